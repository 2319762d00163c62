package site

import (
	"github.com/savanna-accountancy/portal"
	"github.com/savanna-accountancy/portal/h"
	"github.com/savanna-accountancy/portal/internal/ui"
)

const (
	heroTitle   = "Expert Financial Solutions for Your Success"
	heroTagline = "Tailored accounting services for small businesses, freelancers, and individuals. Let us handle your finances while you focus on growth."
)

func static(c *portal.Context, title, path string, content func() []h.H) {
	c.Title(ui.Title(title))
	c.View(func() h.H { return ui.Page(path, content()...) })
}

func home(c *portal.Context) {
	static(c, "", "/", func() []h.H {
		return []h.H{
			h.Section(h.Class("hero"),
				h.H1(h.Text(heroTitle)),
				h.P(h.Text(heroTagline)),
				h.P(
					h.A(h.Href("/signup"), h.Role("button"), h.Text("Get started")), h.Text(" "),
					h.A(h.Href("/book-consultation"), h.Role("button"), h.Class("outline"), h.Text("Book a consultation")),
				),
			),
			h.Section(h.ID("services"),
				h.H2(h.Text("Our Services")),
				h.Div(h.Class("grid cards"), h.Map(Services, serviceCard)),
			),
			h.Section(h.ID("features"),
				h.H2(h.Text("Client Portal Features")),
				h.Div(h.Class("grid cards"), h.Map(features, func(f feature) h.H {
					return h.Article(h.H3(h.Text(f.title)), h.P(h.Text(f.description)))
				})),
			),
			h.Section(h.ID("testimonials"),
				h.H2(h.Text("What Our Clients Say")),
				h.Div(h.Class("grid cards"), h.Map(testimonials, func(t testimonial) h.H {
					return h.Article(
						h.P(h.Em(h.Text(t.quote))),
						h.Footer(h.Strong(h.Text(t.name)), h.Br(), h.Small(h.Text(t.role))),
					)
				})),
			),
			h.Section(h.ID("faq"),
				h.H2(h.Text("Frequently Asked Questions")),
				h.Map(faqs, func(q faq) h.H {
					return h.Details(h.Summary(h.Text(q.question)), h.P(h.Text(q.answer)))
				}),
			),
			contactDetails(),
		}
	})
}

func serviceCard(s Service) h.H {
	return h.Article(
		h.H3(h.Text(s.Title)),
		h.P(h.Text(s.Description)),
		h.A(h.Href("/services/"+s.Slug), h.Text("Learn more")),
	)
}

func services(c *portal.Context) {
	static(c, "Services", "/services", func() []h.H {
		return []h.H{
			h.H1(h.Text("Our Services")),
			h.P(h.Text("Comprehensive accounting and tax services for individuals and businesses.")),
			h.Div(h.Class("grid cards"), h.Map(Services, serviceCard)),
		}
	})
}

func serviceDetail(c *portal.Context) {
	s, ok := ServiceBySlug(c.Param("slug"))
	if !ok {
		notFound(c, "/services", "Service Not Found", "The service you're looking for doesn't exist.", "/services", "Back to Services")
		return
	}
	static(c, s.Title, "/services", func() []h.H {
		return []h.H{
			h.P(h.A(h.Href("/services"), h.Text("← All services"))),
			h.H1(h.Text(s.Title)),
			h.P(h.Text(s.Description)),
			h.Div(h.Class("grid"),
				h.Article(h.H2(h.Text("Benefits")), h.Ul(h.Map(s.Benefits, listItem))),
				h.Article(h.H2(h.Text("Our Process")), h.Ol(h.Map(s.Process, listItem))),
			),
			h.Article(h.Class("cta"),
				h.H2(h.Text("Ready to get started?")),
				h.P(h.Text("Create an account to submit your documents, or talk to us first.")),
				h.A(h.Href("/signup"), h.Role("button"), h.Text("Get started")), h.Text(" "),
				h.A(h.Href("/book-consultation"), h.Role("button"), h.Class("outline"), h.Text("Book a consultation")),
			),
		}
	})
}

func listItem(s string) h.H {
	return h.Li(h.Text(s))
}

func notFound(c *portal.Context, current, title, message, back, backLabel string) {
	c.Logger().Debug("unknown page")
	static(c, title, current, func() []h.H {
		return []h.H{
			h.H1(h.Text(title)),
			h.P(h.Text(message)),
			h.A(h.Href(back), h.Role("button"), h.Text(backLabel)),
		}
	})
}

func categoryNav(active string) h.H {
	items := []h.H{h.Li(h.A(h.Href("/blog"), h.If(active == "", h.AriaCurrent("page")), h.Text("All")))}
	for _, cat := range Categories {
		items = append(items, h.Li(h.A(h.Href("/blog/"+cat.Slug), h.If(active == cat.Slug, h.AriaCurrent("page")), h.Text(cat.Name))))
	}
	return h.Nav(h.Class("categories"), h.Ul(items...))
}

func postCard(p Post) h.H {
	cat, _ := CategoryBySlug(p.Category)
	return h.Article(
		h.Small(h.A(h.Href("/blog/"+cat.Slug), h.Text(cat.Name))),
		h.H3(h.A(h.Href("/blog/posts/"+p.Slug), h.Text(p.Title))),
		h.P(h.Text(p.Excerpt)),
		h.Footer(h.Small(h.Textf("%s · %s", p.Date, p.ReadTime))),
	)
}

func blog(c *portal.Context) {
	static(c, "Blog", "/blog", func() []h.H {
		return []h.H{
			h.H1(h.Text("Financial Insights & Advice")),
			h.P(h.Text("Tax updates, accounting tips and business advice from our team.")),
			categoryNav(""),
			h.Div(h.Class("grid cards"), h.Map(Posts, postCard)),
		}
	})
}

func blogCategory(c *portal.Context) {
	cat, ok := CategoryBySlug(c.Param("category"))
	if !ok {
		notFound(c, "/blog", "Category Not Found", "The category you're looking for doesn't exist.", "/blog", "Back to Blog")
		return
	}
	posts := PostsIn(cat.Slug)
	static(c, cat.Name, "/blog", func() []h.H {
		return []h.H{
			h.H1(h.Text(cat.Name)),
			categoryNav(cat.Slug),
			h.If(len(posts) == 0, h.P(h.Text("No posts in this category yet."))),
			h.Div(h.Class("grid cards"), h.Map(posts, postCard)),
		}
	})
}

func blogPost(c *portal.Context) {
	p, ok := PostBySlug(c.Param("post"))
	if !ok {
		notFound(c, "/blog", "Post Not Found", "The post you're looking for doesn't exist.", "/blog", "Back to Blog")
		return
	}
	cat, _ := CategoryBySlug(p.Category)
	var related []Post
	for _, slug := range p.Related {
		if r, ok := PostBySlug(slug); ok {
			related = append(related, r)
		}
	}
	static(c, p.Title, "/blog", func() []h.H {
		return []h.H{
			h.Article(h.Class("post"),
				h.Header(
					h.Small(h.A(h.Href("/blog/"+cat.Slug), h.Text(cat.Name))),
					h.H1(h.Text(p.Title)),
					h.Small(h.Textf("%s · %s · %s", p.Author, p.Date, p.ReadTime)),
				),
				h.P(h.Text(p.Intro)),
				h.Map(p.Sections, func(s Section) h.H {
					return h.Section(
						h.H2(h.Text(s.Heading)),
						h.Map(s.Paragraphs, func(para string) h.H { return h.P(h.Text(para)) }),
						h.If(len(s.Items) > 0, h.Ul(h.Map(s.Items, listItem))),
					)
				}),
				h.Footer(h.Small(h.Textf("%s, Director, %s", p.Author, ui.Firm))),
			),
			h.Iff(len(related) > 0, func() h.H {
				return h.Section(h.H2(h.Text("Related Articles")), h.Div(h.Class("grid cards"), h.Map(related, postCard)))
			}),
		}
	})
}

var strengths = []feature{
	{"Expertise", "Our team brings years of experience and specialized knowledge in accounting, taxation, and financial planning to help you navigate complex financial matters with confidence."},
	{"Personalized Service", "We take the time to understand your unique needs and goals, providing tailored solutions that address your specific financial challenges and opportunities."},
	{"Technology-Driven", "We leverage the latest accounting software and digital tools to streamline processes, enhance accuracy, and provide you with real-time insights into your financial position."},
}

func about(c *portal.Context) {
	static(c, "About", "/about", func() []h.H {
		return []h.H{
			h.H1(h.Text("About " + ui.Firm)),
			h.P(h.Text("Professional accounting services with a personal touch. We're committed to helping our clients achieve financial success.")),
			h.Section(
				h.H2(h.Text("Our Mission")),
				h.P(h.Text("At Savanna Accountancy, our mission is to provide exceptional accounting services that empower individuals and businesses to achieve their financial goals. We believe in building long-term relationships with our clients based on trust, integrity, and personalized service.")),
				h.Ul(
					listItem("AAT Licensed Accountant with years of industry experience"),
					listItem("QuickBooks Certified ProAdvisor for efficient bookkeeping solutions"),
					listItem("Committed to staying updated with the latest tax regulations"),
					listItem("Dedicated to providing personalized service to each client"),
				),
			),
			h.Section(
				h.H2(h.Text("Why Choose Us?")),
				h.Div(h.Class("grid cards"), h.Map(strengths, func(f feature) h.H {
					return h.Article(h.H3(h.Text(f.title)), h.P(h.Text(f.description)))
				})),
			),
		}
	})
}

func contactDetails() h.H {
	return h.Section(h.ID("contact-details"),
		h.H2(h.Text("Get in Touch")),
		h.Div(h.Class("grid"),
			h.Article(h.H4(h.Text("Phone")), h.P(h.Text("+44 7393 180103"))),
			h.Article(h.H4(h.Text("Email")), h.P(h.Text("gedaats@gmail.com"))),
			h.Article(h.H4(h.Text("Wigan Office")), h.P(h.Text("217 Westward House, King St"), h.Br(), h.Text("Wigan, WN1 1LP"))),
			h.Article(h.H4(h.Text("Manchester Office")), h.P(h.Text("125 Deansgate, First Floor"), h.Br(), h.Text("Manchester, M3 2LH"))),
		),
	)
}

// Signup outcome pages.
const (
	VerificationSent = "Verification Email Sent!"
	AccountCreated   = "Account Created Successfully!"
)

func signupSuccess(c *portal.Context) {
	verification := c.Query("verification") == "true"
	static(c, "Welcome", "", func() []h.H {
		if verification {
			return []h.H{h.Article(h.Class("outcome"),
				h.H1(h.Text(VerificationSent)),
				h.P(h.Text("We've sent a verification email to your inbox.")),
				h.P(h.Text("Please check your email and click the verification link to activate your account.")),
				h.A(h.Href("/"), h.Role("button"), h.Class("outline"), h.Text("Back to Home")), h.Text(" "),
				h.A(h.Href("/login"), h.Role("button"), h.Text("Check Later")),
			)}
		}
		return []h.H{h.Article(h.Class("outcome"),
			h.H1(h.Text(AccountCreated)),
			h.P(h.Text("Your account has been created successfully.")),
			h.P(h.Text("You can now log in to access your account and services.")),
			h.A(h.Href("/login"), h.Role("button"), h.Text("Log in")), h.Text(" "),
			h.A(h.Href("/"), h.Role("button"), h.Class("outline"), h.Text("Back to Home")),
		)}
	})
}

func forgotPassword(c *portal.Context) {
	static(c, "Forgot password", "", func() []h.H {
		return []h.H{h.Article(h.Class("outcome"),
			h.H1(h.Text("Forgot your password?")),
			h.P(h.Text("Password resets are handled by our team. Send us a message from the email address you registered with and we will help you regain access.")),
			h.A(h.Href("/contact"), h.Role("button"), h.Text("Contact us")), h.Text(" "),
			h.A(h.Href("/login"), h.Role("button"), h.Class("outline"), h.Text("Back to login")),
		)}
	})
}
