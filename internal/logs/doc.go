// Package logs reads back the JSON log file written by internal/logging.
//
// Read scans the file with bounded memory, keeps the newest entries that
// pass a Filter, and decodes the standard keys (ts, level, msg, component,
// run_id, event_type) into Entry fields. Lines that are not JSON objects are
// skipped. The CLI "ballotlink logs" command is the main caller.
package logs
