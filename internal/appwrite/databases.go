package appwrite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// DocumentList is a page of raw database documents.
type DocumentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// QueryEqual builds an equality filter in Appwrite's JSON query syntax.
func QueryEqual(attribute string, values ...interface{}) string {
	q, _ := json.Marshal(map[string]interface{}{
		"method":    "equal",
		"attribute": attribute,
		"values":    values,
	})
	return string(q)
}

func collectionPath(databaseID, collectionID string) string {
	return "/databases/" + url.PathEscape(databaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}

// ListDocuments lists documents matching all queries.
func (c *Client) ListDocuments(ctx context.Context, session, databaseID, collectionID string, queries ...string) (*DocumentList, error) {
	query := url.Values{}
	for _, q := range queries {
		query.Add("queries[]", q)
	}
	var list DocumentList
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    collectionPath(databaseID, collectionID),
		query:   query,
		session: session,
	}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateDocument stores data as a new document and returns the raw result.
func (c *Client) CreateDocument(ctx context.Context, session, databaseID, collectionID, documentID string, data interface{}) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"documentId": documentID,
		"data":       data,
	}
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, collectionPath(databaseID, collectionID), session, payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
