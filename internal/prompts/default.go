package prompts

import (
	"github.com/yungbote/lessonplan-backend/internal/domain/lessonplan"
)

// Default returns the vocational-college lesson plan catalog.
func Default() *Catalog {
	return New(defaultTemplates, lessonplan.DefaultFields)
}

var defaultTemplates = map[string]string{
	lessonplan.FieldObjectives: `
作为高职院校{course_name}课程教师，请为第{week}周第{lesson}次课设计教学目标。
章节内容：{chapter_content}

要求：
1. 设计一个知识目标、一个技能目标、一个素养目标。
2. 每个目标都必须是具体且可测量的。
3. 目标应突出职业技能的培养。
4. 严格按照以下格式输出，不要添加任何额外说明：
   - 知识目标：[具体内容]
   - 技能目标：[具体内容]
   - 素养目标：[具体内容]
`,

	lessonplan.FieldKeyPoints: `
根据以下内容，提取本节课的教学重点：
课程：{course_name}
章节：{chapter_content}
课时：{class_hours}

要求：
1. 列出2-3个最重要的知识点或技能点
2. 每条以•开头
`,

	lessonplan.FieldDifficulty: `
根据以下内容，分析本节课的教学难点：
课程：{course_name}
章节：{chapter_content}
课时：{class_hours}

要求：
1. 列出1-2个学生可能难以掌握的内容
2. 每条以•开头
`,

	lessonplan.FieldActivities: `
课程：{course_name}
内容：{chapter_content}
课时：{class_hours}
根据课程内容，要求每个环节时间分配和活动安排明确。要求内容丰富、具体，同时运用多种教学方法（例如案例分析法、练习法、讲授法、讨论法、头脑风暴法、角色扮演法、游戏法等）。结构如下：
-新课导入【X分钟】：导入是引导学生进入学习情境从而形成适宜的学习心理准备状态的教学行为方式。常用的导入方式包括序言导入、尝试导入、演示导入、故事导入、提问导入、范例导入，导入设计要新颖活泼。
-讲授新课【X分钟】：针对不同教学内容选择不同的教学方法，设想如何提出问题、逐步启发学生理解新知，讲清重点、难点，要求有互动、具体，并标注出时间。
-巩固练习【X分钟】：根据课程内容设计练习，加深学生对课堂知识的理解和应用。练习要有层次、有坡度、有密度，并说明练习的进行方式。
-归纳总结【X分钟】：由教师或学生对本课所学内容要点进行回顾，简单明了，适时总结。

要求：
1. 严格按照上述结构设计教学活动
2. 每个环节都要有明确的时间分配
3. 使用多种教学方法，内容要具体丰富
4. 使用清晰的格式，不要使用markdown符号如#和*
5. 只输出教学活动内容，不要包含工学结合体现、评估方式、教学反思等其他内容
`,

	lessonplan.FieldResources: `
为以下课程内容准备教学资源：
课程：{course_name}
章节：{chapter_content}

要求：
1. 列出所需的教学设备和工具
2. 推荐相关的参考资料或网站
3. 格式：分条列出，每条以•开头
`,

	lessonplan.FieldReflection: `
根据以下课程内容，预测可能的教学反思点：
课程：{course_name}
章节：{chapter_content}
课时：{class_hours}

要求：
1. 从教学效果、学生反馈等方面考虑
2. 提出改进建议
3. 格式：分条列出，每条以•开头
`,

	lessonplan.FieldHomework: `
为以下课程内容设计课后作业：
课程：{course_name}
章节：{chapter_content}
课时：{class_hours}

要求：
1. 包含理论题和实践题
2. 难度适中，符合高职学生水平
3. 格式：分条列出，每条以•开头
`,

	lessonplan.FieldEvaluation: `
设计本节课的教学评价方案：
课程：{course_name}
章节：{chapter_content}
课时：{class_hours}

要求：
1. 包含过程性评价和结果性评价
2. 明确评价标准和方式
3. 格式：分条列出，每条以•开头
`,
}
