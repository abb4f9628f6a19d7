package ai

// VideoAnalysisSystemPrompt frames Claude as a short-form video analyst
const VideoAnalysisSystemPrompt = `You are an expert short-form video analyst. You break down
why a video outperformed: its opening hook, how the content is structured,
the creator's delivery style, and the call to action. You answer with a
single JSON object with the keys "hook", "content_structure",
"delivery_style" and "cta", each a concise string.`

// VideoAnalysisUserPrompt carries one video's context.
// Args: platform, URL, caption, engagement rate.
const VideoAnalysisUserPrompt = `Analyze this outperforming video.

Platform: %s
URL: %s
Caption: %s
Engagement rate: %.2f%% (relative to the author's followers)

Describe the hook, content structure, delivery style and CTA.`
