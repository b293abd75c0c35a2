package site

import "github.com/yi-nology/lab_portal/pkg/locale"

// Messages are the interface strings of one locale, keyed by message id.
type Messages map[string]string

var catalog = map[string]Messages{
	locale.Chinese: {
		"site_name":           "智能系统实验室",
		"nav_home":            "首页",
		"nav_news":            "新闻动态",
		"nav_research":        "研究方向",
		"nav_members":         "团队成员",
		"nav_publications":    "学术成果",
		"nav_join":            "加入我们",
		"nav_contact":         "联系我们",
		"hero_title":          "探索智能系统的前沿",
		"hero_subtitle":       "我们专注于前沿研究领域，致力于解决关键科学问题。",
		"home_research":       "我们的研究",
		"home_news":           "最新动态",
		"read_more":           "阅读更多",
		"learn_more":          "了解更多",
		"back":                "返回",
		"news_title":          "新闻动态",
		"news_empty":          "暂无新闻",
		"research_title":      "研究方向",
		"research_highlights": "研究亮点",
		"keywords":            "关键词",
		"members_title":       "团队成员",
		"members_empty":       "暂无成员信息",
		"enrollment_year":     "入学年份",
		"research_interests":  "研究兴趣",
		"education":           "教育背景",
		"publications_title":  "学术成果",
		"publications":        "论文",
		"patents":             "专利",
		"awards":              "竞赛奖项",
		"join_title":          "加入我们",
		"openings":            "招聘岗位",
		"openings_empty":      "暂无招聘岗位",
		"requirements":        "岗位要求",
		"benefits":            "待遇",
		"deadline":            "截止日期",
		"apply":               "申请",
		"contact_title":       "联系我们",
		"address":             "地址",
		"email":               "邮箱",
		"phone":               "电话",
		"form_name":           "姓名",
		"form_email":          "邮箱",
		"form_message":        "留言",
		"form_submit":         "提交",
		"form_sent":           "感谢您的留言，我们会尽快回复。",
		"form_invalid":        "请填写完整的姓名、有效邮箱和留言内容。",
		"form_failed":         "提交失败，请稍后再试。",
		"unavailable":         "内容暂时无法加载，请稍后刷新。",
		"not_found":           "页面不存在",
		"prev":                "上一页",
		"next":                "下一页",
	},
	locale.English: {
		"site_name":           "Intelligent Systems Lab",
		"nav_home":            "Home",
		"nav_news":            "News",
		"nav_research":        "Research",
		"nav_members":         "Members",
		"nav_publications":    "Publications",
		"nav_join":            "Join Us",
		"nav_contact":         "Contact",
		"hero_title":          "Exploring the frontier of intelligent systems",
		"hero_subtitle":       "We focus on frontier research areas and key scientific problems.",
		"home_research":       "Our Research",
		"home_news":           "Latest News",
		"read_more":           "Read more",
		"learn_more":          "Learn more",
		"back":                "Back",
		"news_title":          "News",
		"news_empty":          "No news yet",
		"research_title":      "Research Areas",
		"research_highlights": "Highlights",
		"keywords":            "Keywords",
		"members_title":       "Members",
		"members_empty":       "No members yet",
		"enrollment_year":     "Enrollment year",
		"research_interests":  "Research interests",
		"education":           "Education",
		"publications_title":  "Publications",
		"publications":        "Papers",
		"patents":             "Patents",
		"awards":              "Awards",
		"join_title":          "Join Us",
		"openings":            "Open Positions",
		"openings_empty":      "No open positions",
		"requirements":        "Requirements",
		"benefits":            "Benefits",
		"deadline":            "Deadline",
		"apply":               "Apply",
		"contact_title":       "Contact",
		"address":             "Address",
		"email":               "Email",
		"phone":               "Phone",
		"form_name":           "Name",
		"form_email":          "Email",
		"form_message":        "Message",
		"form_submit":         "Send",
		"form_sent":           "Thank you for your message. We will get back to you soon.",
		"form_invalid":        "Please provide your name, a valid email and a message.",
		"form_failed":         "Sending failed, please try again later.",
		"unavailable":         "Content is temporarily unavailable, please refresh later.",
		"not_found":           "Page not found",
		"prev":                "Previous",
		"next":                "Next",
	},
}

// MessagesFor returns the strings of loc, English for unknown locales.
func MessagesFor(loc string) Messages {
	if m, ok := catalog[loc]; ok {
		return m
	}
	return catalog[locale.English]
}
