// Package testutil provides in-memory fakes and helpers for testing the
// migration code without real databases.
//
//   - MockSourceDAO: source tables and rows held in memory
//   - MockTargetDAO: target tables with transactional inserts, conflict
//     skipping, failure injection, and sequences
//   - NewObservedLogger: a zap logger whose entries can be asserted on
//   - Fixtures: point-of-sale sample tables (fixtures.go)
//
// # Usage
//
//	source := testutil.NewMockSourceDAO()
//	source.AddTable(testutil.CategoryTable, testutil.CategoryRows()...)
//	target := testutil.NewMockTargetDAO()
//	m := migrate.NewMigrator(source, target, zap.NewNop(), migrate.Config{})
//	report := m.Run(ctx)
package testutil
