package library

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// documentVersion is the only version this package knows how to read or
// write (spec §6). A future format bump would register a second parser
// keyed on the version field, the way original_source/media_library.py's
// SONG_VERSION_PARSER/MEDIA_LIBRARY_VERSION_PARSER tables do.
const documentVersion = 1.0

// BadFormatError reports a persisted document whose version field is
// missing or not a version this package can parse. A non-numeric version
// fails JSON parsing instead and is reported as a wrapped parse error.
type BadFormatError struct{ Reason string }

func (e *BadFormatError) Error() string { return "bad library document: " + e.Reason }

type songDocument struct {
	Version     float64 `json:"version"`
	Alias       string  `json:"alias"`
	URI         string  `json:"uri"`
	Description string  `json:"description"`
}

type libraryDocument struct {
	Version   float64             `json:"version"`
	Songs     []songDocument      `json:"songs"`
	Playlists map[string][]string `json:"playlists"`
}

// LoadFile reads and parses the versioned JSON library document at path.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library %s: %w", path, err)
	}

	var doc libraryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing library %s: %w", path, err)
	}
	if doc.Version != documentVersion {
		return nil, &BadFormatError{Reason: fmt.Sprintf("unsupported library document version %v", doc.Version)}
	}

	lib := New()
	for _, sd := range doc.Songs {
		if sd.Version != documentVersion {
			return nil, &BadFormatError{Reason: fmt.Sprintf("unsupported song version %v for alias %q", sd.Version, sd.Alias)}
		}
		if err := lib.AddSong(Song{Alias: sd.Alias, URI: sd.URI, Description: sd.Description}, false); err != nil {
			return nil, err
		}
	}
	for name, aliases := range doc.Playlists {
		if err := lib.CreatePlaylist(name, false); err != nil {
			return nil, err
		}
		for _, alias := range aliases {
			if err := lib.AddSongToPlaylist(alias, name); err != nil {
				return nil, err
			}
		}
	}
	return lib, nil
}

// SaveFile writes lib to path as the versioned JSON library document.
func SaveFile(path string, lib *Library) error {
	doc := libraryDocument{
		Version:   documentVersion,
		Playlists: make(map[string][]string),
	}
	for _, song := range lib.ListSongs() {
		doc.Songs = append(doc.Songs, songDocument{
			Version:     documentVersion,
			Alias:       song.Alias,
			URI:         song.URI,
			Description: song.Description,
		})
	}
	for _, pl := range lib.ListPlaylists() {
		doc.Playlists[pl.Name] = pl.Aliases
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling library: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing library %s: %w", path, err)
	}
	return nil
}
