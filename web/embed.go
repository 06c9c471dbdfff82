// Package web embeds the page templates and static assets.
package web

import "embed"

// TemplatesFS holds the server-rendered pages.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the script that drives the demos.
//
//go:embed static/*
var StaticFS embed.FS
