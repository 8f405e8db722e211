// Package all wires in every built-in blob store backend via side-effect
// imports. Import it from main (or a test) to make blob.New usable for all
// kinds.
package all

import (
	_ "kddprep/internal/blob/memblob"
	_ "kddprep/internal/blob/s3blob"
)
