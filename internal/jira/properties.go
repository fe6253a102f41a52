package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

func propertyPath(key string) string {
	return "/rest/api/3/user/properties/" + url.PathEscape(key)
}

// UserProperty reads a per-user property. A 404 means the property is not
// set and is reported as ok=false with a nil error.
func (c *Client) UserProperty(ctx context.Context, accountID, key string) (json.RawMessage, bool, error) {
	q := url.Values{}
	q.Set("accountId", accountID)

	var pr propertyResponse
	err := c.do(ctx, http.MethodGet, propertyPath(key), q, nil, &pr)
	if IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return pr.Value, true, nil
}

func (c *Client) SetUserProperty(ctx context.Context, accountID, key string, value any) error {
	if key == "" {
		return validationError("property key is required")
	}
	q := url.Values{}
	q.Set("accountId", accountID)
	return c.do(ctx, http.MethodPut, propertyPath(key), q, value, nil)
}
