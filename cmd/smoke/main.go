package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// 对运行中的服务做一次端到端检查
func main() {
	baseURL := flag.String("url", "http://localhost:8000", "Base URL of the running server")
	topic := flag.String("topic", "The impact of remote work on urban economies", "Paper topic")
	words := flag.Int("words", 800, "Requested word limit")
	sections := flag.String("sections", "Abstract,Introduction,Methodology,Results,Conclusion", "Comma separated section titles")
	format := flag.String("format", "pdf", "Export format (markdown/html/pdf)")
	timeout := flag.Duration("timeout", 2*time.Minute, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: *timeout}
	base := strings.TrimRight(*baseURL, "/")

	// 1. 健康检查
	fmt.Println("\n=== Testing Health ===")
	if _, err := get(client, base+"/health"); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// 2. 服务状态
	fmt.Println("\n=== Testing API Status ===")
	if _, err := get(client, base+"/api/status"); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// 3. 生成论文
	fmt.Println("\n=== Testing Paper Generation ===")
	titles := splitTitles(*sections)
	body, err := postJSON(client, base+"/api/create-content", map[string]interface{}{
		"topic":      *topic,
		"word_limit": *words,
		"sections":   titles,
	})
	if err != nil {
		fmt.Printf("Error generating paper: %v\n", err)
		os.Exit(1)
	}

	var paper struct {
		Status           string            `json:"status"`
		Message          string            `json:"message"`
		Sections         map[string]string `json:"sections"`
		WordCount        int               `json:"word_count"`
		ReadabilityScore int               `json:"readability_score"`
		OriginalityScore int               `json:"originality_score"`
	}
	if err := json.Unmarshal(body, &paper); err != nil {
		fmt.Printf("Error parsing JSON response: %v\n", err)
		os.Exit(1)
	}
	if paper.Status != "success" {
		fmt.Printf("Generation failed: %s\n", paper.Message)
		os.Exit(1)
	}
	fmt.Printf("Sections: %d, words: %d, readability: %d, originality: %d\n",
		len(paper.Sections), paper.WordCount, paper.ReadabilityScore, paper.OriginalityScore)

	// 4. 导出，章节按请求顺序排列
	fmt.Println("\n=== Testing Export ===")
	exportSections := make([]map[string]string, 0, len(paper.Sections))
	for _, title := range titles {
		if content, ok := paper.Sections[strings.ToLower(title)]; ok {
			exportSections = append(exportSections, map[string]string{"title": title, "content": content})
		}
	}
	data, err := postJSON(client, base+"/api/export", map[string]interface{}{
		"title":    *topic,
		"format":   *format,
		"sections": exportSections,
	})
	if err != nil {
		fmt.Printf("Error exporting paper: %v\n", err)
		os.Exit(1)
	}

	path, err := writeTempFile("paper."+*format, data)
	if err != nil {
		fmt.Printf("Error writing export: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Export written to %s (%d bytes)\n", path, len(data))
}

func get(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readResponse(resp, true)
}

func postJSON(client *http.Client, url string, payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("error encoding request: %v", err)
	}

	resp, err := client.Post(url, "application/json", &buf)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	isJSON := strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json")
	return readResponse(resp, isJSON)
}

// readResponse 读取响应体，非2xx状态码视为失败
func readResponse(resp *http.Response, printBody bool) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	if printBody {
		fmt.Printf("Status: %d\nResponse: %s\n", resp.StatusCode, string(body))
	} else {
		fmt.Printf("Status: %d\nContent-Type: %s\n", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func splitTitles(s string) []string {
	var titles []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// writeTempFile 将导出内容写入临时目录
func writeTempFile(filename string, data []byte) (string, error) {
	tempDir, err := os.MkdirTemp("", "citeai-smoke-")
	if err != nil {
		return "", err
	}

	filePath := filepath.Join(tempDir, filename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", err
	}
	return filePath, nil
}
