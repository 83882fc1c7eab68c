// Package presenter shows a fired alarm to the user.
//
// The Presenter raises a desktop notification and starts external players for
// the configured background image, video and audio. Stop tears down whatever
// it started.
package presenter
