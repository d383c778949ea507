// Copyright © 2025 The Gomon Project.

package message

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zosmac/gocore"
	"github.com/zosmac/gomodel/model"
	"gopkg.in/yaml.v3"
)

type (
	// writer wraps os.Stdout.
	writer struct{}

	// Encoder writes models to a stream as JSON or YAML documents.
	Encoder struct {
		json *json.Encoder
		yaml *yaml.Encoder
	}
)

var (
	// measureChan sends models for encoding.
	measureChan = make(chan *model.Model, 10)
)

// Write enables writer to conform to io.Writer, indirection allows stdout destination to rotate.
func (writer) Write(buf []byte) (int, error) { return os.Stdout.Write(buf) }

// NewEncoder returns an Encoder writing to w. YAML documents carry the same
// field names as JSON, and are always indented.
func NewEncoder(w io.Writer, format Format, pretty bool) (*Encoder, error) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		return &Encoder{json: enc}, nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &Encoder{yaml: enc}, nil
	}
	return nil, formatError(format)
}

// Encode writes one model.
func (e *Encoder) Encode(m *model.Model) error {
	if e.json != nil {
		return e.json.Encode(m)
	}

	// the model's JSON form defines its field names
	buf, err := json.Marshal(m)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(buf, &node); err != nil {
		return err
	}
	block(&node)
	return e.yaml.Encode(&node)
}

// Close flushes any buffered YAML output.
func (e *Encoder) Close() error {
	if e.yaml != nil {
		return e.yaml.Close()
	}
	return nil
}

// block resets the flow style of the JSON derived node tree so that it encodes as block YAML.
func block(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		block(c)
	}
}

// Stream configures the encoding of models to standard output.
func Stream(ctx context.Context) error {
	if info, err := os.Stdout.Stat(); err != nil {
		return gocore.Error("Stat", err)
	} else if !info.Mode().IsRegular() {
		flags.rotate.Set("0s") // rotate interval is meaningless for a non-file destination
	}

	enc, err := NewEncoder(writer{}, flags.format, flags.pretty)
	if err != nil {
		return err
	}

	go encode(ctx, enc)

	return nil
}

// Export encodes one model to w in the -format of the command line.
func Export(w io.Writer, m *model.Model) error {
	enc, err := NewEncoder(w, flags.format, flags.pretty)
	if err != nil {
		return err
	}
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

// Measure sends a model to encode.
func Measure(m *model.Model) {
	measureChan <- m
}

// encode runs as a goroutine that receives models and encodes them.
func encode(ctx context.Context, enc *Encoder) {
	var timer, ticker <-chan time.Time
	if flags.rotate.interval > 0 {
		tm := time.Now().UTC().Truncate(flags.rotate.interval)
		// synchronize rotation to occur at the 'top' of the interval (day, hour, minute)
		timer = time.NewTimer(time.Until(tm.Add(flags.rotate.interval))).C
	}

	for {
		select {
		case m := <-measureChan:
			if err := enc.Encode(m); err != nil {
				gocore.Error("Encode", err).Err()
			}
		case t := <-timer: // first rotate on 'top' of interval
			ticker = time.NewTicker(flags.rotate.interval).C // start subsequent ticking
			enc = rotateFile(t, enc)
		case t := <-ticker:
			enc = rotateFile(t, enc)
		case <-ctx.Done():
			enc.Close()
			gocore.Error("Encoder", ctx.Err()).Info()
			return
		}
	}
}

// rotateFile renames the output file with the time of rotation appended, and
// continues encoding to a new file. On failure encoding continues with enc.
func rotateFile(t time.Time, enc *Encoder) *Encoder {
	timestamp := t.UTC().Format(flags.rotate.format)

	info, err := os.Stdout.Stat()
	if err != nil {
		gocore.Error("Stat", err).Err()
		return enc
	}

	if !info.Mode().IsRegular() {
		return enc
	}

	oldpath, err := gocore.FdPath(int(os.Stdout.Fd()))
	if err != nil {
		gocore.Error("FdPath", err).Err()
		return enc
	}

	ext := filepath.Ext(oldpath)
	base := strings.TrimSuffix(filepath.Base(oldpath), ext)
	newpath := filepath.Join(filepath.Dir(oldpath), base+"-"+timestamp+ext)

	if err := os.Rename(oldpath, newpath); err != nil {
		gocore.Error("Rename", err).Err()
		return enc
	}

	sout, err := os.Create(oldpath)
	if err != nil {
		gocore.Error("Create", err).Err()
		return enc
	}
	chown(sout, info)

	// a YAML stream restarts in the new file
	next, err := NewEncoder(writer{}, flags.format, flags.pretty)
	if err != nil {
		sout.Close()
		return enc
	}
	enc.Close()

	old := os.Stdout
	os.Stdout = sout
	old.Close()

	return next
}
