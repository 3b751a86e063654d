// Package embedder turns documented schema elements into vector embeddings.
//
// ExtractPrompts builds one prompt per top-level element that has both a name
// and documentation, keyed "{file}/{name}":
//
//	XSD File: fpml-main.xsd. Element Name: trade. Function/Documentation: ...
//
// Keys and prompts share positions, so the i-th vector returned by an
// Embedder belongs to the i-th key.
//
// # Providers
//
// Three Embedder implementations are available:
//
//   - local: offline feature hashing of words into 384 dimensions
//   - jina: Jina AI embeddings API
//   - openai: OpenAI embeddings API
//
// The HTTP providers split large batches into sub-batches, send them
// concurrently with retry and exponential backoff, and place the results by
// input index. Any failed sub-batch fails the whole batch. Vectors are
// cached in an LRU keyed by model and the SHA-256 of the prompt, so an
// unchanged element is not sent again on the next run.
//
// # Pipeline
//
//	emb, err := embedder.New(embedder.Config{Provider: "local"})
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	p := embedder.NewPipeline(emb, storage.NewJSONFileSink("generated_embeddings.json"), logger)
//	res, err := p.Run(ctx, source)
//
// Run makes a single batch call, checks that one vector came back per prompt,
// normalizes every vector to unit length and persists the result through the
// sink. On any failure nothing is written.
package embedder
