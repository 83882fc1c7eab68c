// Package mainloop implements the application's main execution context.
//
// A Loop runs posted functions one after another on the goroutine that called
// Run, the way a GUI toolkit runs callbacks on its UI thread. Background
// workers hand work to it with Post; it never blocks them.
package mainloop
