package article

// LLM prompt templates: data only, no logic.

// DefaultInstruction is the writing instruction used when a run gives none.
const DefaultInstruction = "写成一篇面向公众号读者的深度文章，结构清晰，逻辑严谨，提炼可执行建议，语气自然口语化。"

// imageLimitCapped caps the number of images. Args: max images.
const imageLimitCapped = "配图总数不能超过 %d 张。"

// imageLimitOpen lets the model decide how many images a plan needs.
const imageLimitOpen = "配图数量不固定，按内容需要决定，只在真正需要视觉辅助的段落配图。"

// planPrompt asks for a JSON article plan.
// Args: target words, image limit rule, user instruction, timestamped transcript.
const planPrompt = `你是一个专业的中文科技作者和编辑。请基于给定视频逐字稿，产出一篇可发布的中文 Markdown 文章规划。

任务要求：
1. 按用户要求写作，风格自然、结构清晰。
2. 全文目标字数约 %d 字（允许上下浮动 10%%）。
3. 自动判断哪些段落适合配图。%s
4. 每张图必须给出视频时间戳（timestamp），用于后续自动截图。
5. image.anchor 必须是 body_markdown 中原样出现的一段连续文本，长度 8-40 字符，用于插图锚点。
6. 只输出 JSON，不要输出额外解释。

JSON 格式：
{
  "title": "文章标题",
  "lead": "导语（1-2段）",
  "sections": [
    {
      "heading": "小节标题",
      "body_markdown": "小节正文（Markdown）",
      "image": {
        "need": true,
        "timestamp": "HH:MM:SS",
        "caption": "图片说明",
        "alt": "图片ALT",
        "anchor": "正文中的连续文本"
      }
    }
  ],
  "conclusion": "结语",
  "tags": ["标签1", "标签2"]
}

用户写作要求：
%s

视频逐字稿（带时间戳）：
%s`
