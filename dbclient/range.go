package dbclient

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/NyanCAD/Pyttoresque/schem"
)

type allDocsRow struct {
	ID  string          `json:"id"`
	Doc json.RawMessage `json:"doc"`
}

type allDocsResponse struct {
	UpdateSeq json.RawMessage `json:"update_seq"`
	Rows      []allDocsRow    `json:"rows"`
}

// ListByRange fetches every document whose id lies in [prefix+":",
// prefix+":\uFFF0") along with the database's current update-sequence
// token.
func (c *Client) ListByRange(ctx context.Context, prefix string) (string, map[string]schem.RawDoc, error) {
	query := url.Values{
		"include_docs": {"true"},
		"startkey":     {"\"" + prefix + ":\""},
		"endkey":       {"\"" + prefix + ":\uFFF0\""},
		"update_seq":   {"true"},
	}

	var resp allDocsResponse
	if err := c.jsonGet(ctx, "_all_docs", query, &resp); err != nil {
		return "", nil, err
	}

	docs := make(map[string]schem.RawDoc, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.Doc) == 0 {
			continue
		}
		rev, err := extractRev(row.Doc)
		if err != nil {
			return "", nil, err
		}
		docs[row.ID] = schem.RawDoc{ID: row.ID, Rev: rev, Body: row.Doc}
	}

	seq := seqString(resp.UpdateSeq)
	return seq, docs, nil
}

func extractRev(body json.RawMessage) (string, error) {
	var env struct {
		Rev string `json:"_rev"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	return env.Rev, nil
}

func seqString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
