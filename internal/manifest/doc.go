// Package manifest loads declarative node manifests from HCL files.
//
// A manifest is the on-disk half of a node's contract: it declares the
// node's identity (id, name, version) and a typed schema for its inputs and
// outputs. The compiled Go factory registered for the same id is the other
// half. Keeping the two in sync is enforced by the registry's parity
// validation, which shifts a whole class of wiring mistakes from run time
// to startup.
//
// Example:
//
//	node "http_request" {
//	  name        = "HTTP Request"
//	  version     = "1.0.0"
//	  description = "Performs an HTTP call and exposes the response."
//
//	  input "url" {
//	    type = string
//	  }
//	  input "method" {
//	    type    = string
//	    default = "GET"
//	  }
//	  output "status" {
//	    type = number
//	  }
//	}
package manifest
