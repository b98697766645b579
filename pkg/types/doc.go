// Package types defines the Container, Node and AttributeTable interfaces,
// the attribute value and key model, and the standard error values for the
// nodeattrs storage system.
//
// Values are a tagged variant: a rank-0 Scalar, a fixed-shape Array, or
// Text. Names are resolved to a canonical byte Key before they reach the
// storage engine, so TextName("a") and ByteName("a") address one record.
package types
