/*
File Name:  Exit.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner
*/

package cirrolus

// Exit codes signal why Init failed. Clients are encouraged to log
// additional details in a log file. 3rd party clients may define additional
// exit codes.
const (
	ExitSuccess           = 0          // Init and LoadConfig succeeded.
	ExitErrorConfigAccess = 1          // Error accessing the config file.
	ExitErrorConfigRead   = 2          // Error reading the config file.
	ExitErrorConfigParse  = 3          // Error parsing the config file.
	ExitErrorLogInit      = 4          // Error initializing log file.
	ExitErrorStoreInit    = 5          // Error initializing the fragment/known-peer store.
	ExitGraceful          = 9          // Graceful shutdown.
	STATUS_CONTROL_C_EXIT = 0xC000013A // The application terminated as a result of a CTRL+C. This is a Windows NTSTATUS value.
)
