// Package command is the declarative model of a command tree.
//
// A command document maps command names to node objects:
//
//	{
//	  "foo": {
//	    "level": "admins",
//	    "executable": true,
//	    "arguments": {
//	      "bar": {"type": "brigadier:integer", "parameters": {"min": 0}, "executable": true}
//	    },
//	    "redirect": {"target": "baz", "modifier": true, "forks": true}
//	  }
//	}
//
// Read and ReadAll turn documents into *Node trees; Write and WriteAll turn
// them back. The Builder and Provider produce the same trees from Go code.
package command
