// Package cli implements the recordfiles command: one-shot file operations
// on the records of a backend table.
//
// Usage:
//
//	recordfiles [flags] <command> <table> <recordID> [args]
//
// Commands:
//
//	ls                                 list the record's files
//	put   <name> <localPath|->         upload a local file (or stdin)
//	get   <name> [dir]                 download into dir (default "downloads")
//	rm    <name>                       delete one file
//	rmall                              delete every file of the record
//	url   <name> [read|write|delete]   print a time-limited access URI
//	fetch <name> [dir]                 download through a presigned read URI
//	push  <name> <localPath>           upload through a presigned write URI
//
// Flags are described in package config.
package cli
