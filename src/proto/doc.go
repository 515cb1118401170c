// Package proto implements the line protocol spoken by meshkv nodes and their
// clients.
//
// Every connection carries exactly one request line and one reply line. The
// first line of a connection is classified by ParseLine:
//
//  set-value 3:30                                  client command
//  node//get-value 3//17//[h:p, h:p]//h:p           peer envelope, line form
//  {"v":1,"kind":"node","op":"get-value",...}      peer envelope, structured form
//
// The line form is the historical format. Its fields are separated by "//" and
// the trace is rendered as a bracketed, comma-space separated list of
// host:port entries. The structured form is a versioned JSON object in which
// every field is tagged and escaped, so that no address or argument can break
// the framing. Both forms are always accepted; the form used for outbound
// envelopes is selected by the node configuration.
//
// Replies are plain strings. ERROR, ERROR <detail> and UNKNOWN COMMAND <op>
// form the error class recognised by IsErrorReply.
package proto
