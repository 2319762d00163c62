package site

// Service is one of the firm's service lines.
type Service struct {
	Slug        string
	Title       string
	Description string
	Benefits    []string
	Process     []string
}

// Services are listed in the order shown on the services page.
var Services = []Service{
	{
		Slug:        "self-assessment",
		Title:       "Self-Assessment Tax Returns",
		Description: "Comprehensive tax return preparation for individuals and businesses, ensuring compliance and maximizing deductions.",
		Benefits: []string{
			"Accurate and timely submission of your tax return",
			"Identification of all applicable tax deductions and reliefs",
			"Advice on tax planning strategies to minimize future tax liabilities",
			"Support with HMRC correspondence and inquiries",
			"Year-round tax advice and support",
		},
		Process: []string{
			"Initial consultation to understand your financial situation",
			"Collection and organization of all necessary financial documents",
			"Preparation and review of your tax return",
			"Submission to HMRC and confirmation of receipt",
			"Advice on tax payment deadlines and amounts due",
		},
	},
	{
		Slug:        "corporation-tax",
		Title:       "Corporation Tax & Limited Company Services",
		Description: "Expert assistance with corporation tax returns, company accounts, and strategic tax planning for limited companies.",
		Benefits: []string{
			"Accurate preparation and filing of corporation tax returns",
			"Strategic tax planning to minimize corporate tax liabilities",
			"Compliance with all HMRC regulations and deadlines",
			"Preparation of statutory accounts",
			"Ongoing support and advice throughout the financial year",
		},
		Process: []string{
			"Review of company financial records and transactions",
			"Identification of allowable expenses and capital allowances",
			"Preparation of corporation tax computation and return",
			"Filing with HMRC and Companies House",
			"Advice on tax payment schedules and planning for future periods",
		},
	},
	{
		Slug:        "vat",
		Title:       "VAT Returns & Compliance",
		Description: "Navigate complex VAT regulations and ensure full compliance with HMRC requirements with our specialized VAT services.",
		Benefits: []string{
			"Accurate and timely VAT return preparation and submission",
			"Advice on VAT registration and deregistration",
			"Guidance on VAT schemes (Flat Rate, Cash Accounting, etc.)",
			"Support with VAT inspections and inquiries",
			"Strategic advice to optimize VAT position",
		},
		Process: []string{
			"Review of VAT records and transactions",
			"Calculation of VAT due or refundable",
			"Preparation and submission of VAT returns",
			"Advice on VAT payment deadlines",
			"Regular reviews to ensure ongoing compliance",
		},
	},
	{
		Slug:        "payroll",
		Title:       "Payroll Services",
		Description: "Efficient payroll processing and management, ensuring timely and accurate payments for your employees.",
		Benefits: []string{
			"Accurate calculation of employee salaries, taxes, and deductions",
			"Timely processing of payroll and distribution of payslips",
			"Compliance with PAYE, National Insurance, and pension regulations",
			"Management of statutory payments (sick pay, maternity pay, etc.)",
			"Year-end reporting and P60 preparation",
		},
		Process: []string{
			"Set up of payroll system for your business",
			"Collection of employee information and tax codes",
			"Monthly/weekly processing of payroll",
			"Submission of Real Time Information (RTI) to HMRC",
			"Distribution of payslips and reports to management",
		},
	},
	{
		Slug:        "bookkeeping",
		Title:       "Bookkeeping & Financial Reporting",
		Description: "Accurate and timely bookkeeping services to keep your finances organized and compliant with all regulations.",
		Benefits: []string{
			"Accurate recording of all financial transactions",
			"Regular financial reports to monitor business performance",
			"Improved financial visibility for better decision-making",
			"Reduced risk of errors and compliance issues",
			"Time savings allowing you to focus on your core business",
		},
		Process: []string{
			"Set up or review of bookkeeping systems",
			"Regular recording of sales, purchases, and expenses",
			"Bank reconciliations and credit card reconciliations",
			"Preparation of management accounts and financial reports",
			"Year-end preparation for tax returns and accounts",
		},
	},
	{
		Slug:        "business-startup",
		Title:       "Business Start-Up & Advisory Services",
		Description: "Strategic guidance for new businesses and entrepreneurs to optimize operations and drive growth from day one.",
		Benefits: []string{
			"Expert guidance on business structure selection",
			"Assistance with company formation and registration",
			"Set up of accounting systems and processes",
			"Strategic tax planning from the outset",
			"Ongoing business and financial advice",
		},
		Process: []string{
			"Initial consultation to understand your business vision and goals",
			"Advice on business structure (sole trader, partnership, limited company)",
			"Registration with HMRC and Companies House",
			"Implementation of accounting and bookkeeping systems",
			"Development of financial forecasts and business plans",
		},
	},
}

// ServiceBySlug finds a service.
func ServiceBySlug(slug string) (Service, bool) {
	for _, s := range Services {
		if s.Slug == slug {
			return s, true
		}
	}
	return Service{}, false
}

// Category groups blog posts.
type Category struct {
	Slug string
	Name string
}

var Categories = []Category{
	{"tax-updates", "Tax Updates"},
	{"accounting-tips", "Accounting Tips"},
	{"financial-insights", "Financial Insights"},
	{"business-advice", "Business Advice"},
}

// CategoryBySlug finds a blog category.
func CategoryBySlug(slug string) (Category, bool) {
	for _, c := range Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// Section is a headed block of a blog post.
type Section struct {
	Heading    string
	Paragraphs []string
	Items      []string
}

// Post is a blog article.
type Post struct {
	Slug     string
	Title    string
	Excerpt  string
	Category string
	Date     string
	ReadTime string
	Author   string
	Intro    string
	Sections []Section
	Related  []string
}

const director = "Geda Gemechu"

// Posts are newest first.
var Posts = []Post{
	{
		Slug:     "understanding-self-assessment-tax-returns",
		Title:    "Understanding Self-Assessment Tax Returns",
		Excerpt:  "A comprehensive guide to completing your self-assessment tax return correctly and on time.",
		Category: "tax-updates",
		Date:     "March 1, 2025",
		ReadTime: "5 min read",
		Author:   director,
		Intro:    "Self-assessment tax returns are a crucial part of the UK tax system, requiring individuals to calculate and report their own income and tax obligations to HMRC. This guide covers the process, the deadlines and the habits that make filing on time straightforward.",
		Sections: []Section{
			{
				Heading:    "Who Needs to File a Self-Assessment Tax Return?",
				Paragraphs: []string{"You'll typically need to file a self-assessment tax return if:"},
				Items: []string{
					"You're self-employed as a 'sole trader' and earned more than £1,000",
					"You're a partner in a business partnership",
					"You have untaxed income, such as rental income or foreign income",
					"You have capital gains from selling assets like property or shares",
					"You need to claim tax relief on pension contributions or charitable donations",
				},
			},
			{
				Heading:    "Key Deadlines to Remember",
				Paragraphs: []string{"Missing deadlines can result in penalties, so keep these dates in mind:"},
				Items: []string{
					"5 April: End of the tax year",
					"31 October: Deadline for paper tax returns",
					"31 January: Deadline for online tax returns and paying the tax you owe",
				},
			},
			{
				Heading: "How a Professional Accountant Can Help",
				Paragraphs: []string{
					"Working with an accountant makes sure all income is reported and every eligible expense is claimed, reduces the risk of penalties and leaves HMRC correspondence to someone who deals with it every day.",
				},
			},
		},
		Related: []string{"essential-bookkeeping-tips-small-businesses", "how-to-prepare-for-new-tax-year", "vat-registration-when-how-register"},
	},
	{
		Slug:     "essential-bookkeeping-tips-small-businesses",
		Title:    "Essential Bookkeeping Tips for Small Businesses",
		Excerpt:  "Learn how proper bookkeeping can save you time, money, and stress as a small business owner.",
		Category: "accounting-tips",
		Date:     "February 15, 2025",
		ReadTime: "4 min read",
		Author:   director,
		Intro:    "Good bookkeeping is the foundation of a healthy small business. Up to date records make tax time easier and show you where your money goes.",
		Sections: []Section{
			{
				Heading: "Habits That Pay Off",
				Items: []string{
					"Keep business and personal finances in separate accounts",
					"Record transactions weekly rather than at year end",
					"Keep digital copies of every receipt and invoice",
					"Reconcile your bank accounts every month",
				},
			},
		},
		Related: []string{"understanding-self-assessment-tax-returns", "digital-record-keeping-small-businesses"},
	},
	{
		Slug:     "how-to-prepare-for-new-tax-year",
		Title:    "How to Prepare for the New Tax Year",
		Excerpt:  "Key strategies and important dates to help you prepare for the upcoming tax year.",
		Category: "financial-insights",
		Date:     "February 1, 2025",
		ReadTime: "6 min read",
		Author:   director,
		Intro:    "The weeks before 5 April are the last chance to use this year's allowances. A short review now can save a noticeable amount of tax.",
		Sections: []Section{
			{
				Heading: "Before 5 April",
				Items: []string{
					"Use your ISA allowance",
					"Review pension contributions and available carry forward",
					"Consider the timing of dividends and bonuses",
					"Check whether you can use your capital gains allowance",
				},
			},
		},
		Related: []string{"understanding-self-assessment-tax-returns", "latest-tax-changes-2025-26"},
	},
	{
		Slug:     "vat-registration-when-how-register",
		Title:    "VAT Registration: When and How to Register",
		Excerpt:  "Understanding when your business needs to register for VAT and the steps to complete the process.",
		Category: "business-advice",
		Date:     "January 20, 2025",
		ReadTime: "7 min read",
		Author:   director,
		Intro:    "Once your VAT taxable turnover passes the registration threshold you must register with HMRC within 30 days. Registering voluntarily below the threshold can also make sense.",
		Sections: []Section{
			{
				Heading: "Registering",
				Paragraphs: []string{
					"Most businesses register online through their HMRC business tax account. You will need your turnover figures, bank details and details of any associated businesses.",
				},
			},
		},
		Related: []string{"essential-bookkeeping-tips-small-businesses"},
	},
	{
		Slug:     "latest-tax-changes-2025-26",
		Title:    "Latest Tax Changes for the 2025/26 Tax Year",
		Excerpt:  "An overview of the key tax changes taking effect in the 2025/26 tax year and how they might affect you.",
		Category: "tax-updates",
		Date:     "January 15, 2025",
		ReadTime: "8 min read",
		Author:   director,
		Intro:    "Each new tax year brings changes to rates, thresholds and reliefs. Here is what to look out for this year.",
	},
	{
		Slug:     "digital-record-keeping-small-businesses",
		Title:    "Digital Record Keeping for Small Businesses",
		Excerpt:  "How to implement effective digital record keeping systems to streamline your business operations.",
		Category: "accounting-tips",
		Date:     "January 10, 2025",
		ReadTime: "5 min read",
		Author:   director,
		Intro:    "Making Tax Digital means more businesses must keep digital records. Choosing the right software early saves a lot of rework.",
	},
	{
		Slug:     "investment-strategies-business-owners",
		Title:    "Investment Strategies for Business Owners",
		Excerpt:  "Smart investment approaches to help business owners grow their wealth and secure their financial future.",
		Category: "financial-insights",
		Date:     "January 5, 2025",
		ReadTime: "6 min read",
		Author:   director,
		Intro:    "Extracting profit from your company tax efficiently and investing it well are two sides of the same plan.",
	},
	{
		Slug:     "scaling-business-financial-considerations",
		Title:    "Scaling Your Business: Financial Considerations",
		Excerpt:  "Key financial factors to consider when planning to scale your business operations.",
		Category: "business-advice",
		Date:     "December 20, 2024",
		ReadTime: "7 min read",
		Author:   director,
		Intro:    "Growth puts pressure on cash flow before it improves profit. Forecasting ahead of expansion keeps that pressure manageable.",
	},
}

// PostBySlug finds a blog post.
func PostBySlug(slug string) (Post, bool) {
	for _, p := range Posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return Post{}, false
}

// PostsIn lists the posts of a category, newest first.
func PostsIn(category string) []Post {
	var out []Post
	for _, p := range Posts {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

type faq struct {
	question, answer string
}

var faqs = []faq{
	{"How do I upload my documents securely?", `You can easily upload your documents through our secure client portal. After logging in, open the "Service Requests" section and attach your files to a new request.`},
	{"What types of files can I upload?", "We accept PDF, Excel, Word documents, and image files (JPG, PNG) for financial records, invoices, and receipts. The maximum file size is 10MB per file."},
	{"How do I book an appointment with an expert?", "Use the booking form to choose your preferred date and time. We will contact you to confirm the appointment."},
	{"How will I receive cost estimates for services?", "After reviewing your uploaded documents, we will send you a cost estimate via WhatsApp. You can also view the price of each request within your secure client portal."},
}

type feature struct {
	title, description string
}

var features = []feature{
	{"Secure Document Upload", "Easily upload and manage your financial documents through our encrypted portal."},
	{"Online Appointment Booking", "Schedule consultations with our experts at your convenience."},
	{"Seamless Online Payments", "Make secure payments for our services using various payment methods."},
	{"Real-time Communication", "Stay updated with instant messaging and notifications about your services."},
}

type testimonial struct {
	name, role, quote string
}

var testimonials = []testimonial{
	{"John Smith", "Small Business Owner", "Savanna Accountancy has been instrumental in helping my business grow. Their expert advice and efficient services have saved me time and money."},
	{"Sarah Johnson", "Freelance Designer", "As a freelancer, managing finances was always a challenge. Savanna Accountancy simplified everything for me."},
	{"Michael Brown", "Tech Startup Founder", "The team understands the unique challenges of startups. Their strategic financial planning has been crucial to our success."},
	{"Emma Wilson", "E-commerce Entrepreneur", "Their attention to detail and proactive approach to tax planning has saved my business thousands of pounds."},
}
