package net

// RPCResponse captures both a reply line and a potential error. A non-nil
// Error is sent back as an ERROR reply.
type RPCResponse struct {
	Response string
	Error    error
}

// RPC encapsulates an incoming request line and provides a response
// mechanism.
type RPC struct {
	Line     string
	RespChan chan<- RPCResponse
}

// Respond is used to respond with a reply, an error or both.
func (r *RPC) Respond(resp string, err error) {
	r.RespChan <- RPCResponse{resp, err}
}
