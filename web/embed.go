// Package web встраивает страницы регистрации и админ-панели.
package web

import "embed"

// Pages содержит index.html и admin.html.
//
//go:embed index.html admin.html
var Pages embed.FS

// Static содержит стили и скрипты страниц.
//
//go:embed static/*
var Static embed.FS
