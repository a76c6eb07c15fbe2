package discogs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Results is the normalized outcome of a database search.
//
// When the response is an object with a non-null "results" member, Wrapped
// is true and Raw holds exactly that member. Otherwise Raw is the whole
// body, minus surrounding whitespace. Items is Raw decoded as a list, and
// stays nil when Raw is not a JSON array.
type Results[T any] struct {
	Items      []T
	Raw        json.RawMessage
	Wrapped    bool
	StatusCode int
}

// SearchReleases searches the database for releases matching an artist
// name and an album title.
func (c *Client) SearchReleases(ctx context.Context, artist, album string) (Results[Release], error) {
	u := c.searchURL("release", "release_title", album, "artist", artist)
	return search[Release](ctx, c, "search releases", u)
}

// SearchArtists searches the database for artists matching a name.
func (c *Client) SearchArtists(ctx context.Context, artist string) (Results[Artist], error) {
	u := c.searchURL("artist", "title", artist)
	return search[Artist](ctx, c, "search artists", u)
}

func search[T any](ctx context.Context, c *Client, op, u string) (Results[T], error) {
	resp, err := c.get(ctx, op, u)
	if err != nil {
		return Results[T]{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Results[T]{}, &CallError{Op: op, URL: u, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	res, err := unwrapResults[T](body)
	if err != nil {
		return Results[T]{}, &CallError{Op: op, URL: u, Err: fmt.Errorf("failed to decode discogs response: %w", err)}
	}
	res.StatusCode = resp.StatusCode
	return res, nil
}

// unwrapResults returns the "results" member of body when it is present
// and truthy, and body itself otherwise. The key must match exactly;
// null, false, 0 and "" count as absent. Only malformed JSON is an error.
func unwrapResults[T any](body []byte) (Results[T], error) {
	raw := bytes.TrimSpace(body)
	if !json.Valid(raw) {
		return Results[T]{}, fmt.Errorf("invalid JSON body (%d bytes)", len(body))
	}

	res := Results[T]{Raw: json.RawMessage(raw)}

	if raw[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return Results[T]{}, err
		}
		if member, ok := envelope["results"]; ok && truthy(member) {
			res.Raw = member
			res.Wrapped = true
		}
	}

	if res.Raw[0] == '[' {
		if err := json.Unmarshal(res.Raw, &res.Items); err != nil {
			return Results[T]{}, err
		}
	}
	return res, nil
}

// truthy reports whether a JSON value is truthy in the JavaScript sense.
// Objects and arrays always are, even when empty.
func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case 'n', 'f':
		return false
	case '"':
		return len(v) > 2
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(v), 64)
		return err != nil || f != 0
	}
	return true
}
