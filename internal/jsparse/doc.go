// Package jsparse is the parsing collaborator of the bundler: it turns a
// loaded source file into a syntax tree and extracts the statically declared
// import paths from it.
//
// The default front end is github.com/tdewolff/parse/v2/js. Import
// extraction is a capability (ImportExtractor) rather than a tree walk baked
// into callers, so alternate front ends can be substituted.
package jsparse
