// Package main is the catalogcrawl command.
//
// catalogcrawl signs in to a PeopleSoft class search site with Chrome,
// searches every major and career combination and stores the courses and
// sections it finds.
//
// Usage:
//
//	catalogcrawl crawl
//	catalogcrawl crawl --major COMPSCI --career UGRD
//	catalogcrawl dimensions
//	catalogcrawl runs
//
// See --help for all available options.
package main

func main() {
	Execute()
}
