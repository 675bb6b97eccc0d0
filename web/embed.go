package web

import "embed"

// TemplatesFS embeds the dashboard page and slide partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
