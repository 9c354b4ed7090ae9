// Package theme resolves the light or dark palette for a user's stored theme
// preference and derives terminal styles from it.
//
// Integration example:
//
//	palette := theme.Resolve(user.Theme)
//	styles := theme.NewStyles(palette)
//	fmt.Println(styles.Header.Render("Task Mate"))
//
// Resolution is total: a missing, null or unknown preference yields the light
// palette. Palettes are plain values, so callers always receive a copy.
package theme
