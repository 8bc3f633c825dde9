package ports

// InputResolver expands a task's declared input globs into a sorted,
// deduplicated list of concrete workspace-relative file paths.
//
//go:generate go run go.uber.org/mock/mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type InputResolver interface {
	ResolveInputs(inputs []string, root string) ([]string, error)
}

// Verifier checks that a task's declared outputs exist after a successful run.
//
//go:generate go run go.uber.org/mock/mockgen -destination=mocks/verifier_mock.go -package=mocks -source=resolver.go
type Verifier interface {
	VerifyOutputs(root string, outputs []string) (bool, error)
}
