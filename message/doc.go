// Copyright © 2025 The Gomon Project.

/*
Package message implements the structured text export of the models produced
by the "gomodel" command. Each tick's model is streamed to standard output as
a JSON or YAML document.

The message package defines the following command line flags:
  - -document: document the field paths of each model and exit
  - -format:   the export format, json or yaml (default json)
  - -pretty:   format JSON output in a manner that is human readable
  - -rotate:   an interval at which to rotate the output file
*/
package message
