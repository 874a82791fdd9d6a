// Package files groups the file-related sub-packages:
//   - filesystem: filesystem abstraction (OS and in-memory)
//   - scanner: discovery of yearly extracts in the data directory
//
// # Usage
//
//	matcher, _ := metadata.NewMatcher("")
//	result, err := scanner.NewScannerWithFS(matcher, filesystem.NewOSFileSystem()).ScanDirectory("./data")
package files
