// Package bus implements the message protocol between the host and the
// embedded rendering surface.
//
// Every frame is a flat JSON object tagged by its "type" field:
//
//	{"type":"graph_data","cursus_id":21,"campus_id":14}
//
// # Inbound and Outbound
//
// Decode only accepts the messages a surface may send (graph_data requests,
// project_link_click, error and warning). Each decoded value is an Inbound
// and is dispatched through InboundHandler, which has one method per
// variant, so adding a message without handling it fails to compile.
//
// Encode accepts the messages a host may send: init_data, graph_data
// responses and navigate.
//
// # Host
//
// Host is the InboundHandler used for a live surface. It answers a graph_data
// request with up to two responses for the same key: the cached dataset, if
// any, immediately, and the fresh dataset once it arrives. Loads superseded
// by a newer request end silently.
package bus
