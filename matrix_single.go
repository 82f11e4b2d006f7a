//go:build !vtbuf_doublematrix

package vtbuf

const compiledDoubleMatrices = false
