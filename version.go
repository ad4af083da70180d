package tally

// Version is the module version recorded in container metadata and digests.
const Version = "0.1.0"
