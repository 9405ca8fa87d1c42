package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "纯对象",
			in:   `{"synopsis": "故事"}`,
			want: `{"synopsis": "故事"}`,
		},
		{
			name: "代码块包裹",
			in:   "```json\n{\"synopsis\": \"故事\"}\n```",
			want: `{"synopsis": "故事"}`,
		},
		{
			name: "前后夹杂说明文字",
			in:   "好的，以下是结果：\n{\"outlines\": []}\n希望有帮助。",
			want: `{"outlines": []}`,
		},
		{
			name: "数组",
			in:   `前缀 [1, 2, 3] 后缀`,
			want: `[1, 2, 3]`,
		},
		{
			name: "空输入",
			in:   "   ",
			want: "",
		},
		{
			name: "无JSON返回原文",
			in:   "抱歉，我无法完成这个任务。",
			want: "抱歉，我无法完成这个任务。",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ExtractJSONObject(c.in))
		})
	}
}

func TestIsResponseFormatUnsupportedError(t *testing.T) {
	assert.False(t, IsResponseFormatUnsupportedError(nil))
	assert.True(t, IsResponseFormatUnsupportedError(errTest("response_format is not supported by this model")))
	assert.True(t, IsResponseFormatUnsupportedError(errTest("unknown parameter: 'response_format'")))
	assert.False(t, IsResponseFormatUnsupportedError(errTest("rate limit exceeded")))
}

type errTest string

func (e errTest) Error() string { return string(e) }
