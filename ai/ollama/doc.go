// Package ollama implements the ai interfaces against a native Ollama server.
//
// Generation and embedding use separate langchaingo clients, each bound to its
// own model, so a small chat model can summarize while a dedicated embedding
// model produces the dense vectors. Images are sent inline as binary parts,
// which vision-capable models such as llava caption directly.
package ollama
