package field

// Field paths shared by the draft controller, the encoder and the server.
// Nested address parts use dotted paths.
const (
	Gender                  = "gender"
	FirstName               = "firstName"
	LastName                = "lastName"
	Email                   = "email"
	Country                 = "country"
	PhoneNumber             = "phoneNumber"
	MobileNumber            = "mobileNumber"
	Address                 = "address"
	AddressStreet           = "address.street"
	AddressStreet2          = "address.street2"
	AddressZipcode          = "address.zipcode"
	AddressCity             = "address.city"
	AddressStateRegion      = "address.stateRegion"
	AddressCountry          = "address.country"
	AcquisitionSource       = "acquisitionSource"
	AcquisitionSourceSocial = "acquisitionSourceSocial"
	AcquisitionSourceOther  = "acquisitionSourceOther"
	AgeVerified             = "ageVerified"
	HasContributors         = "hasContributors"
	Contributors            = "contributors"
	HasSocialNetworks       = "hasSocialNetworks"
	SocialNetworks          = "socialNetworks"

	Title          = "title"
	TitleEN        = "titleEN"
	Language       = "language"
	Synopsis       = "synopsis"
	SynopsisEN     = "synopsisEN"
	TechResume     = "techResume"
	CreativeResume = "creativeResume"
	Classification = "classification"
	Tags           = "tags"

	Video    = "video"
	Cover    = "cover"
	Stills   = "stills"
	Subtitle = "srt"

	RightsAccepted    = "rightsAccepted"
	NewsletterOptIn   = "newsletterOptIn"
	VerificationToken = "verificationToken"

	ProductionRole = "productionRole"
)
