// Package engine opens SQLite databases through the modernc.org/sqlite
// driver and registers the knn_l2 and knn_cosine scalar functions the SQL
// neighbor index ranks rows with. Every connection opened through Open sees
// the functions.
package engine
