// Package bruteforce provides an exact neighbor index that answers kNN
// queries by scanning every training row. It is the reference backend the
// approximate indexes are checked against.
package bruteforce
