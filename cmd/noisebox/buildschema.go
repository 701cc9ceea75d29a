package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
)

// schemaEntry is one entry of the closed command/event set (spec §4.4):
// name of the discriminator value, the discriminator field it rides on,
// and a hand-rolled JSON-schema-style property map for its payload.
type schemaEntry struct {
	Name            string
	DiscriminatorID string
	Properties      map[string]any
	Required        []string
}

var commandSchemas = []schemaEntry{
	{
		Name:            "TOGGLE_PLAY",
		DiscriminatorID: "command_name",
		Properties: map[string]any{
			"play_state": map[string]any{"type": "boolean"},
		},
	},
	{Name: "NEXT_SONG", DiscriminatorID: "command_name", Properties: map[string]any{}},
	{
		Name:            "LIST_SONGS",
		DiscriminatorID: "command_name",
		Properties: map[string]any{
			"page_token":      map[string]any{"type": "string"},
			"max_num_entries": map[string]any{"type": "integer"},
		},
	},
	{
		Name:            "LIST_PLAYLISTS",
		DiscriminatorID: "command_name",
		Properties: map[string]any{
			"page_token":      map[string]any{"type": "string"},
			"max_num_entries": map[string]any{"type": "integer"},
		},
	},
}

var eventSchemas = []schemaEntry{
	{
		Name:            "ERROR",
		DiscriminatorID: "event_name",
		Required:        []string{"error_type", "error_message", "error_env"},
		Properties: map[string]any{
			"error_type":          map[string]any{"type": "string", "enum": []string{"USER_ERROR", "CLIENT_ERROR", "FAILURE", "INTERNAL_ERROR"}},
			"error_message":       map[string]any{"type": "string"},
			"error_data":          map[string]any{"type": "string"},
			"error_env":           map[string]any{"type": "string", "enum": []string{"PRODUCTION", "DEBUG"}},
			"originating_command": map[string]any{"type": "string"},
		},
	},
	{
		Name:            "PLAY_STATE",
		DiscriminatorID: "event_name",
		Required:        []string{"new_play_state"},
		Properties: map[string]any{
			"new_play_state": map[string]any{"type": "boolean"},
		},
	},
	{
		Name:            "SONG_PLAYING",
		DiscriminatorID: "event_name",
		Required:        []string{"current_song"},
		Properties: map[string]any{
			"current_song": songSchema(),
		},
	},
	{
		Name:            "LIST_SONGS",
		DiscriminatorID: "event_name",
		Required:        []string{"songs"},
		Properties: map[string]any{
			"songs":           map[string]any{"type": "array", "items": songSchema()},
			"next_page_token": map[string]any{"type": "string"},
			"has_more":        map[string]any{"type": "boolean"},
		},
	},
	{
		Name:            "LIST_PLAYLISTS",
		DiscriminatorID: "event_name",
		Required:        []string{"playlists"},
		Properties: map[string]any{
			"playlists":       map[string]any{"type": "array", "items": playlistSchema()},
			"next_page_token": map[string]any{"type": "string"},
			"has_more":        map[string]any{"type": "boolean"},
		},
	},
}

func songSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"metadata":    map[string]any{"type": "object"},
			"local_path":  map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}
}

func playlistSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"metadata":    map[string]any{"type": "object"},
			"songs":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"name"},
	}
}

func runBuildschema(args []string) int {
	fs := flag.NewFlagSet("buildschema", flag.ContinueOnError)
	out := fs.String("out", "", "directory to write schema files into (required)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *out == "" {
		fmt.Fprintln(os.Stderr, "buildschema: --out is required")
		return 2
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "buildschema: %v\n", err)
		return 1
	}

	all := make([]schemaEntry, 0, len(commandSchemas)+len(eventSchemas))
	all = append(all, commandSchemas...)
	all = append(all, eventSchemas...)
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	for _, entry := range all {
		if err := writeMessageSchema(*out, entry); err != nil {
			fmt.Fprintf(os.Stderr, "buildschema: %v\n", err)
			return 1
		}
	}

	fmt.Fprintf(os.Stdout, "wrote %d schema file(s) to %s\n", len(all), *out)
	return 0
}

// writeMessageSchema writes one message's JSON schema document to
// <out>/<command|event>_<lowercased name>.schema.json. The schema describes
// the payload object with its discriminator field; the outer
// {"command": ...}/{"event": ...} envelope is not part of it.
func writeMessageSchema(out string, entry schemaEntry) error {
	props := map[string]any{
		entry.DiscriminatorID: map[string]any{"type": "string", "const": entry.Name},
	}
	for k, v := range entry.Properties {
		props[k] = v
	}
	required := append([]string{entry.DiscriminatorID}, entry.Required...)

	schema := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"title":      entry.Name,
		"type":       "object",
		"properties": props,
		"required":   required,
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(out, fileNameFor(entry))
	return os.WriteFile(path, data, 0o644)
}

// fileNameFor disambiguates LIST_SONGS/LIST_PLAYLISTS, which name both a
// command and a reply event, by prefixing with the discriminator side.
func fileNameFor(entry schemaEntry) string {
	side := "event"
	if entry.DiscriminatorID == "command_name" {
		side = "command"
	}
	lower := make([]byte, len(entry.Name))
	for i := 0; i < len(entry.Name); i++ {
		c := entry.Name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		lower[i] = c
	}
	return side + "_" + string(lower) + ".schema.json"
}
