// Package walker turns a root memory address into a populated node graph.
//
// # Overview
//
// A walk starts from one struct instance in the target process and follows
// every member that holds a valid pointer. Each discovered instance becomes an
// [Object] backed by one graph node; each struct member becomes a [Field]
// backed by one attribute with both a plug and a socket. Pointers become
// connections from the pointing field to the first field of the object they
// reach, or to the matching field of an object that was already visited.
//
// # Termination
//
// Visited objects are kept in an address-ordered arena. Before recursing, the
// walker checks whether the pointed-to address lies inside any visited range;
// if so it connects to that object instead of visiting it again. Self
// referential and shared structures therefore terminate and produce exactly
// one node per object.
//
// # Target
//
// The walker never talks to a debugger directly. It reads memory and struct
// metadata through the [Target] interface; package target/image provides an
// implementation backed by a YAML memory image, and package walkertest an
// in-memory one for tests.
//
// # Failures
//
// A missing struct definition, a union, or a struct without members aborts
// the whole walk with an OBJECT_NOT_DEFINED, UNSUPPORTED or NO_MEMBER_FOUND
// error. Nodes created before the failure stay in the graph; the returned
// [Result] lists them.
//
// # Sockets
//
// Every field has a single socket, and a socket holds at most one connection.
// When two pointers reach the same field, the later connection replaces the
// earlier one in the graph. The [Field.Target] of both pointing fields still
// records where they point.
package walker
