// Package prepository implements Pioneer's repository layer: a typed mapping surface over a storage client rooted at a path,
// always wrapping the backend in the Safety wrapper (the only wrapper the
// repository layer always applies). DataRepository is the concrete
// implementation, storing serialized pdata.Data records named by string
// keys under its root.
//
// Construction only wraps the given client in Safety; a repository has no
// Start or Close step and its inputs are not validated up front.
package prepository
