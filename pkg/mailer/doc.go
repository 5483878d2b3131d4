// Package mailer composes HTML emails from embedded templates and hands them
// to a Sender for delivery.
//
// Templates are html/template files with optional YAML frontmatter. String
// frontmatter values are themselves text templates and are rendered with the
// same data, which makes them suitable for subjects and fixed phrases:
//
//	---
//	Wish: "{{.Outlet}} vous souhaite un bon appétit !"
//	---
//	<p>{{.Meta.Wish}}</p>
//
// Inside the body the data is available as .Data and the rendered metadata as
// .Meta. A sibling file with the .txt extension, when present, is rendered
// with text/template as the plain-text alternative.
//
// The markdown function converts one line of inline markdown to sanitized
// HTML. It understands emphasis, links and the button syntax
// [!button|Label](https://example.com).
//
// Delivery providers implement [Sender]; see the smtp subpackage.
package mailer
