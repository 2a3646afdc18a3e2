package parsers

import (
	"fmt"
	"strings"
)

// fallbackMessage builds the human-readable placeholder stored as the
// single chunk of an unparseable document. The message is aimed at the
// person who uploaded the file, not at operators.
func fallbackMessage(filename string, sizeBytes int64, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "'%s' 파일이 업로드되었지만 내용을 추출하지 못했습니다.\n", filename)
	fmt.Fprintf(&b, "사유: %s\n", reason)
	b.WriteString(hintFor(reason))
	if sizeBytes > 0 {
		fmt.Fprintf(&b, "\n파일 정보: %s", formatSize(sizeBytes))
	}
	return b.String()
}

func hintFor(reason string) string {
	switch {
	case strings.Contains(reason, reasonNotFound):
		return "파일이 제대로 업로드되지 않았습니다. 다시 선택해서 업로드해 주세요."
	case strings.Contains(reason, reasonEmptyFile):
		return "파일에 실제 내용이 있는지 확인한 후 다시 업로드해 주세요."
	case strings.Contains(reason, reasonTooLarge):
		return "파일을 더 작은 단위로 나누거나 페이지 수를 줄여서 다시 업로드해 주세요."
	case strings.Contains(reason, reasonGarbled):
		return "스캔 이미지 기반 PDF이거나 특수한 인코딩을 쓰는 파일로 보입니다. 텍스트나 Word 형식으로 변환해 다시 시도해 주세요."
	default:
		return "지원되는 형식(.pdf, .docx, .txt, .md)으로 변환해 다시 업로드해 주세요."
	}
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
