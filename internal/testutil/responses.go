package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ConnectionPage builds a 200 response containing one page of a nodes-form
// connection at data.<field>, with throttle telemetry attached.
func ConnectionPage(field string, nodes []map[string]any, hasNextPage bool, endCursor any, currentlyAvailable float64) ScriptResponse {
	if nodes == nil {
		nodes = []map[string]any{}
	}
	body := map[string]any{
		"data": map[string]any{
			field: map[string]any{
				"nodes": nodes,
				"pageInfo": map[string]any{
					"hasNextPage": hasNextPage,
					"endCursor":   endCursor,
				},
			},
		},
		"extensions": costExtensions(currentlyAvailable),
	}
	return ScriptResponse{StatusCode: http.StatusOK, Body: marshal(body)}
}

// EdgesPage is ConnectionPage for the edges form.
func EdgesPage(field string, nodes []map[string]any, hasNextPage bool, endCursor any, currentlyAvailable float64) ScriptResponse {
	edges := make([]map[string]any, len(nodes))
	for i, node := range nodes {
		edges[i] = map[string]any{
			"node":   node,
			"cursor": fmt.Sprintf("edge-cursor-%d", i),
		}
	}
	body := map[string]any{
		"data": map[string]any{
			field: map[string]any{
				"edges": edges,
				"pageInfo": map[string]any{
					"hasNextPage": hasNextPage,
					"endCursor":   endCursor,
				},
			},
		},
		"extensions": costExtensions(currentlyAvailable),
	}
	return ScriptResponse{StatusCode: http.StatusOK, Body: marshal(body)}
}

// DataResponse builds a plain 200 response with the given data object and
// no telemetry.
func DataResponse(data map[string]any) ScriptResponse {
	return ScriptResponse{StatusCode: http.StatusOK, Body: marshal(map[string]any{"data": data})}
}

// ThrottledResponse builds the API's THROTTLED rejection: errors with no
// data, plus the authoritative throttle status.
func ThrottledResponse(currentlyAvailable, maximumAvailable, restoreRate float64) ScriptResponse {
	body := map[string]any{
		"errors": []map[string]any{
			{
				"message":    "Throttled",
				"extensions": map[string]any{"code": "THROTTLED"},
			},
		},
		"extensions": map[string]any{
			"cost": map[string]any{
				"requestedQueryCost": 167,
				"throttleStatus": map[string]any{
					"maximumAvailable":   maximumAvailable,
					"currentlyAvailable": currentlyAvailable,
					"restoreRate":        restoreRate,
				},
			},
		},
	}
	return ScriptResponse{StatusCode: http.StatusOK, Body: marshal(body)}
}

// ErrorResponse builds a 200 response carrying GraphQL errors and no data.
func ErrorResponse(messages ...string) ScriptResponse {
	details := make([]map[string]any, len(messages))
	for i, message := range messages {
		details[i] = map[string]any{"message": message}
	}
	return ScriptResponse{StatusCode: http.StatusOK, Body: marshal(map[string]any{"errors": details})}
}

// PartialResponse builds a 200 response with both data and errors.
func PartialResponse(data map[string]any, messages ...string) ScriptResponse {
	details := make([]map[string]any, len(messages))
	for i, message := range messages {
		details[i] = map[string]any{"message": message}
	}
	return ScriptResponse{StatusCode: http.StatusOK, Body: marshal(map[string]any{
		"data":   data,
		"errors": details,
	})}
}

// costExtensions builds a standard telemetry block reporting the given
// availability against the default 1000-point bucket.
func costExtensions(currentlyAvailable float64) map[string]any {
	return map[string]any{
		"cost": map[string]any{
			"requestedQueryCost": 10,
			"actualQueryCost":    5,
			"throttleStatus": map[string]any{
				"maximumAvailable":   1000.0,
				"currentlyAvailable": currentlyAvailable,
				"restoreRate":        50.0,
			},
		},
	}
}

func marshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
