// Package audit implements the Pod Manager's exchange/operation log.
//
// Logger writes one JSON line per exchange termination and per therapy
// operation outcome to a file managed by gopkg.in/natefinch/lumberjack.v2,
// which rotates it by size and age. Grounded on the teacher's
// internal/audit.Logger, replacing its hand-rolled os.OpenFile append and
// manual Rotate() with lumberjack's rotation.
package audit
