//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"webrag/internal/adapter/analyzer"
	"webrag/internal/adapter/chunker"
	"webrag/internal/adapter/fetcher"
	"webrag/internal/adapter/index"
	"webrag/internal/adapter/retriever"
)

var r *retriever.TFIDFRetriever

func init() {
	r = newRetriever()
}

func newRetriever() *retriever.TFIDFRetriever {
	chk, _ := chunker.NewRecursiveChunker(chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
	return retriever.NewTFIDFRetriever(chk, index.NewBuilder(analyzer.NewTokenizer(), index.DefaultMaxFeatures))
}

func main() {
	c := make(chan struct{})

	js.Global().Set("webragIndex", js.FuncOf(indexContent))
	js.Global().Set("webragIndexHTML", js.FuncOf(indexHTML))
	js.Global().Set("webragQuery", js.FuncOf(queryContent))
	js.Global().Set("webragClear", js.FuncOf(clearIndex))
	js.Global().Set("webragStats", js.FuncOf(getStats))

	<-c
}

func indexContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: webragIndex(text)")
	}
	return indexText(args[0].String())
}

// indexHTML extracts readable text from a page the host already fetched.
func indexHTML(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: webragIndexHTML(html)")
	}
	text, err := fetcher.ExtractText(args[0].String())
	if err != nil {
		return makeError("extraction failed: " + err.Error())
	}
	return indexText(text)
}

func indexText(text string) interface{} {
	n, err := r.IndexSource(text)
	if err != nil {
		return makeError("indexing failed: " + err.Error())
	}
	return makeResult(map[string]interface{}{
		"success": true,
		"chunks":  n,
	})
}

func queryContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: webragQuery(query, [topK])")
	}

	query := args[0].String()
	topK := retriever.DefaultTopK
	if len(args) > 1 {
		topK = args[1].Int()
	}

	results, err := r.Query(query, topK)
	if err != nil {
		return makeError("search failed: " + err.Error())
	}

	output := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		output = append(output, map[string]interface{}{
			"index": res.Chunk.Index,
			"score": res.Score,
			"text":  res.Chunk.Text,
		})
	}

	return makeResult(map[string]interface{}{
		"results": output,
		"query":   query,
	})
}

func clearIndex(this js.Value, args []js.Value) interface{} {
	r = newRetriever()
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	stats := r.Stats()
	return makeResult(map[string]interface{}{
		"ready":      r.Ready(),
		"chunks":     stats.Chunks,
		"vocabulary": stats.Vocabulary,
		"generation": stats.Generation,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
