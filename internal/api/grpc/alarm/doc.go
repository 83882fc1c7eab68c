// Package alarm implements the gRPC control API of the alarm clock.
//
// The service is declared by hand on top of protobuf well-known types
// (Struct, StringValue, Empty), so no generated code is needed. The package
// holds the service descriptor, the codec between domain types and Struct
// messages, the server adapter over a business Service, and the mapping of
// domain errors to gRPC status codes and back.
package alarm
