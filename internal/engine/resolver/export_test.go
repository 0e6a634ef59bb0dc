package resolver

// SplitPackage exposes splitPackage for tests.
var SplitPackage = splitPackage
