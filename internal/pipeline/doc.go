// Package pipeline loads declarative file-transform pipelines from HCL and
// lowers them into build tasks.
//
// A pipeline file declares named stages. Each stage has a kind (read, upper,
// lower, trim, concat, write) and refers to other stages by name, forming the
// task graph the build engine resolves incrementally. Stage attributes may
// reference pipeline variables through the var scope, with defaults declared
// in variable blocks and overrides supplied by the caller.
package pipeline
