/*
Package zcss implements a small CSS core: a lossless tokenizer, a
recursive-descent parser with support for CSS nesting, an immutable syntax
tree and serializers for that tree.


Basics

Parsing occurs in two steps. First the scanner breaks up the input text into
tokens such as identifiers, whitespace, strings and punctuation. Every byte
of the input belongs to exactly one token, so concatenating the raw text of
all tokens reproduces the input. The parser then builds the syntax tree from
the token stream.

	ss, err := zcss.Parse(".a { .b { color: red } }", zcss.Options{Source: "app.css"})

Errors are either a *LexError for a malformed token or a *ParseError for a
structural problem. Both carry the source label and the line and column of
the offending input. Parsing stops at the first error.


Abstract Syntax Tree

At the top-level there is a Stylesheet holding rules, at-rules and comments.
A Rule has a list of selectors, kept as verbatim source text, and a Block. A
Block holds declarations, comments, at-rules and nested rules in source
order.

Inside a block the parser tells a nested rule from a declaration by looking
ahead for a "{" before the next ";" or "}" at the same depth. Custom property
declarations such as "--x: { a: b }" are always declarations.

An AtRule has a name, a raw prelude and an optional Block. Its block uses the
same grammar as a rule's block, so "@media" inside a rule may contain
declarations directly.


Serializing

Dump writes a tree as JSON or YAML with a fixed field order and Decode reads
it back. Printer and Format regenerate CSS text that parses to an equal tree.
WriteTokens and FormatError are debugging aids for token streams and errors.
*/
package zcss
