// Package preflight provides readiness checks for the filesystem paths and
// auxiliary files a linking run depends on.
//
// The CLI "ballotlink check" command runs every check and prints the
// results; individual checks (CheckDirectoryAccess, CheckInputs) can also be
// used on their own. A missing output directory passes when it can be
// created. Checking the run history opens the database, which applies any
// pending migrations.
package preflight
