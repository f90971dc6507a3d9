// Package assets embeds the web page sources.
package assets

import _ "embed"

// IndexTemplate is the page shell; see internal/page for its fields.
//
//go:embed index.html.tpl
var IndexTemplate string

// Style is the page stylesheet.
//
//go:embed style.css
var Style string

// Script is the map client.
//
//go:embed script.js
var Script string

// Favicon is the site icon.
//
//go:embed favicon.svg
var Favicon string
