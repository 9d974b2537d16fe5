// Package planning partitions validated orders into grade groups, runs the
// batch allocator once per group and assembles the results into a Plan.
// Groups are allocated concurrently; the allocator itself stays pure.
package planning
