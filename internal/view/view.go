// Package view holds the server-rendered HTML components. The .templ files
// are the sources; run `templ generate` after editing them.
package view
