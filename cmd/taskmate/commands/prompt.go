package commands

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// Check maps an answer to "" (valid) or a message.
type Check func(string) string

// Prompter asks for input the flags did not provide.
type Prompter interface {
	Input(message, def string, check Check) (string, error)
	Password(message string, check Check) (string, error)
	Confirm(message string) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string, check Check) (string, error) {
	var out string
	prompt := &survey.Input{Message: message, Default: def}
	if err := survey.AskOne(prompt, &out, askOpts(check)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Password(message string, check Check) (string, error) {
	var out string
	if err := survey.AskOne(&survey.Password{Message: message}, &out, askOpts(check)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(message string) (bool, error) {
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func askOpts(check Check) []survey.AskOpt {
	if check == nil {
		return nil
	}
	return []survey.AskOpt{survey.WithValidator(surveyValidator(check))}
}

// surveyValidator adapts a Check to survey's untyped validator.
func surveyValidator(check Check) survey.Validator {
	return func(ans interface{}) error {
		s, ok := ans.(string)
		if !ok {
			return fmt.Errorf("unexpected answer type %T", ans)
		}
		if msg := check(s); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
