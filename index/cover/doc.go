// Package cover provides a neighbor index backed by a cover tree. With the
// default per-node bound and the Euclidean metric search is exact; the
// level bound trades recall for speed, making it an approximate index.
package cover
