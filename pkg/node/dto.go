package node

import "encoding/json"

// InitRequest is the body of the handshake that assigns this node its identity.
type InitRequest struct {
	Type    string   `json:"type"`
	MsgID   uint64   `json:"msg_id"`
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

// decodeInit reads the handshake fields by their exact wire names.
func decodeInit(body Body) (InitRequest, error) {
	req := InitRequest{Type: body.Type}
	if body.MsgID != nil {
		req.MsgID = *body.MsgID
	}

	if err := body.Fields.Decode("node_id", &req.NodeID); err != nil {
		return InitRequest{}, err
	}
	if raw, found := body.Fields.Get("node_ids"); found {
		if err := json.Unmarshal(raw, &req.NodeIDs); err != nil {
			return InitRequest{}, err
		}
	}

	return req, nil
}
