package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/wellness-service/internal/adapters/clients"
	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// maxReplyBytes caps how much of a messages reply is decoded. Replies are a
// short category list; anything near this size is not one.
const maxReplyBytes = 1 << 20

// exchange sends one messages request and decodes the reply. Every failure,
// including an undecodable 2xx body, comes back as a domain error.
func exchange(ctx context.Context, client *clients.Client, req *messagesRequest) (*messagesResponse, error) {
	resp, err := client.PostJSON(ctx, messagesPath, req)
	if err != nil {
		return nil, MapHTTPError(nil, err, classifierServiceName, classifyOperation)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, MapHTTPError(resp, nil, classifierServiceName, classifyOperation)
	}

	reply, err := decodeReply(resp.Body)
	if err != nil {
		return nil, domain.NewUnavailableError(classifierServiceName, err.Error())
	}

	return reply, nil
}

func decodeReply(body io.Reader) (*messagesResponse, error) {
	var reply messagesResponse
	if err := json.NewDecoder(io.LimitReader(body, maxReplyBytes)).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if reply.Type == "error" {
		return nil, fmt.Errorf("decoding response: error envelope with success status")
	}

	return &reply, nil
}
