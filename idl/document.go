package idl

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/cdr-streamer/errors"
)

// Decode reads a YAML or JSON tree document.
func Decode(r io.Reader) (*Tree, error) {
	var t Tree
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if err == io.EOF {
			return &Tree{}, nil
		}
		return nil, errors.ParseFailed("tree document", err)
	}
	return &t, nil
}

// LoadFile decodes the tree document at path.
func LoadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "open "+path)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes t as a YAML tree document.
func Encode(w io.Writer, t *Tree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "encode tree document")
	}
	return enc.Close()
}
