//go:build bbsearch_debug

package search

const debugBuild = true
