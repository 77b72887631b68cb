// Package pseudo synthesizes deterministic, non-identifying surrogate
// values: names, organizations, addresses, emails, phone numbers, account
// identifiers, and dates. Every generator draws from a seeded random
// stream so the same entity key always maps to the same surrogate, and
// retries with salted keys until the output differs from its source.
package pseudo

// givenNames is the draw pool for given names. Deliberately common,
// multi-origin, and free of famous-person collisions. Names that double
// as US state or city names (Georgia, Austin) are excluded so that
// generated text never trips the place detectors on a rescan.
var givenNames = []string{
	"Alex", "Avery", "Bailey", "Blake", "Cameron", "Casey", "Charlie", "Dakota",
	"Drew", "Elliot", "Emerson", "Finley", "Harper", "Hayden", "Jamie", "Jordan",
	"Kendall", "Lane", "Logan", "Morgan", "Parker", "Peyton", "Quinn", "Reese",
	"Riley", "Rowan", "Sage", "Skyler", "Taylor", "Tatum",
	"Aaron", "Adam", "Adrian", "Alan", "Albert", "Andre", "Andrew", "Anthony",
	"Arthur", "Benjamin", "Bennett", "Brian", "Bruce", "Bryan", "Caleb",
	"Calvin", "Carl", "Carlos", "Cesar", "Chad", "Charles", "Christian", "Clark",
	"Cole", "Colin", "Connor", "Craig", "Curtis", "Dale", "Daniel", "Darius",
	"David", "Dean", "Dennis", "Derek", "Diego", "Dominic", "Donald", "Douglas",
	"Duncan", "Dylan", "Edgar", "Edward", "Eli", "Elias", "Emmett", "Eric",
	"Ernest", "Ethan", "Eugene", "Evan", "Felix", "Francis", "Frank", "Gabriel",
	"Gary", "Gavin", "George", "Gerald", "Gilbert", "Gordon", "Graham", "Grant",
	"Gregory", "Harold", "Harris", "Harvey", "Hector", "Henry", "Howard", "Hugh",
	"Ian", "Isaac", "Ivan", "Jack", "Jacob", "James", "Jared", "Jason", "Jeffrey",
	"Jeremy", "Jesse", "Joel", "John", "Jonah", "Jonathan", "Joseph", "Joshua",
	"Julian", "Keith", "Kenneth", "Kevin", "Kyle", "Lawrence", "Leo", "Leon",
	"Lewis", "Liam", "Lionel", "Louis", "Lucas", "Luke", "Marcus", "Mark",
	"Martin", "Mason", "Matthew", "Maurice", "Michael", "Miles", "Mitchell",
	"Nathan", "Neil", "Nelson", "Nicholas", "Noah", "Nolan", "Norman", "Oliver",
	"Omar", "Oscar", "Owen", "Patrick", "Paul", "Peter", "Philip", "Preston",
	"Ralph", "Raymond", "Reginald", "Ricardo", "Richard", "Robert", "Roger",
	"Roland", "Ronald", "Ross", "Roy", "Russell", "Ryan", "Samuel", "Scott",
	"Sean", "Sergio", "Seth", "Simon", "Spencer", "Stanley", "Stephen", "Stuart",
	"Terrence", "Theodore", "Thomas", "Timothy", "Todd", "Tony", "Travis",
	"Trevor", "Tristan", "Victor", "Vincent", "Walter", "Warren", "Wayne",
	"Wesley", "William", "Winston", "Zachary",
	"Abigail", "Ada", "Adele", "Adriana", "Alice", "Alicia", "Alma", "Amanda",
	"Amber", "Amelia", "Amy", "Andrea", "Angela", "Anita", "Anna", "Annette",
	"April", "Audrey", "Barbara", "Beatrice", "Bernadette", "Beth", "Bianca",
	"Bonnie", "Bridget", "Brooke", "Camille", "Cara", "Carla", "Carmen", "Carol",
	"Caroline", "Cassandra", "Catherine", "Cecilia", "Celeste",
	"Chloe", "Christina", "Claire", "Clara", "Colleen", "Cynthia", "Daisy",
	"Dana", "Daniela", "Daphne", "Deborah", "Denise", "Diana", "Dolores",
	"Donna", "Doris", "Dorothy", "Edith", "Eileen", "Elaine", "Eleanor",
	"Elena", "Elise", "Elizabeth", "Ella", "Ellen", "Eloise", "Emily", "Emma",
	"Erica", "Esther", "Eva", "Evelyn", "Faith", "Fiona", "Frances", "Gabriela",
	"Gail", "Gillian", "Gloria", "Grace", "Hannah", "Hazel", "Heather",
	"Helen", "Holly", "Hope", "Irene", "Iris", "Isabel", "Jacqueline", "Jane",
	"Janet", "Janice", "Jasmine", "Jean", "Jennifer", "Jessica", "Jill", "Joan",
	"Joanna", "Josephine", "Joyce", "Judith", "Julia", "Juliette", "June",
	"Karen", "Katherine", "Kathleen", "Kayla", "Kelly", "Kimberly", "Kristen",
	"Laura", "Lauren", "Leah", "Lena", "Lillian", "Linda", "Lisa", "Lorraine",
	"Louise", "Lucia", "Lucy", "Lydia", "Mabel", "Madeline", "Marcia",
	"Margaret", "Maria", "Marie", "Marilyn", "Marina", "Marion", "Martha",
	"Mary", "Maureen", "Megan", "Melissa", "Meredith", "Michelle", "Miriam",
	"Molly", "Monica", "Nadia", "Nancy", "Naomi", "Natalie", "Nicole", "Nina",
	"Nora", "Olivia", "Pamela", "Patricia", "Paula", "Pauline", "Pearl",
	"Penelope", "Phoebe", "Priscilla", "Rachel", "Rebecca", "Regina", "Renee",
	"Rita", "Rosa", "Rose", "Ruth", "Sabrina", "Sandra", "Sarah", "Serena",
	"Sharon", "Sheila", "Shirley", "Sofia", "Stella", "Stephanie", "Susan",
	"Sylvia", "Tamara", "Teresa", "Tessa", "Valerie", "Vanessa", "Vera",
	"Veronica", "Victoria", "Violet", "Vivian", "Wendy", "Yvonne",
	"Zoe",
}

// surnames is the draw pool for family names.
var surnames = []string{
	"Abbott", "Adler", "Aldridge", "Allred", "Ames", "Appleton", "Archer",
	"Ashford", "Atwood", "Bancroft", "Barker", "Barlow", "Barrett", "Barton",
	"Bauer", "Baxter", "Beckett", "Bellamy", "Bennett", "Benton", "Berger",
	"Bishop", "Blackwell", "Blakely", "Bowen", "Bradford", "Brandt", "Brewer",
	"Brigham", "Bristow", "Brock", "Burgess", "Burnett", "Byrd", "Calloway",
	"Camden", "Cardwell", "Carlisle", "Carmichael", "Carson", "Carver",
	"Chandler", "Chapman", "Chase", "Childers", "Clayton", "Clifford",
	"Colby", "Coleman", "Conrad", "Corbin", "Cortland", "Crane", "Crawford",
	"Crosby", "Culver", "Dalton", "Danvers", "Davenport", "Dawson", "Delaney",
	"Denton", "Dickerson", "Donovan", "Dorsey", "Draper", "Driscoll", "Dudley",
	"Duffy", "Dunbar", "Easton", "Eddington", "Ellery", "Ellison", "Elmore",
	"Emerson", "Ennis", "Fairbanks", "Fairchild", "Falkner", "Farley",
	"Farnsworth", "Fenwick", "Ferris", "Finch", "Fitzgerald", "Fleming",
	"Fletcher", "Forsythe", "Foster", "Frost", "Gallagher", "Galloway",
	"Gardner", "Garfield", "Garner", "Garrison", "Gentry", "Gibbs", "Gilmore",
	"Goddard", "Goodwin", "Granger", "Grantham", "Graves", "Grayson",
	"Greenfield", "Gresham", "Griffith", "Grimes", "Hale", "Halloway",
	"Hammond", "Hampton", "Hargrove", "Harlan", "Harmon", "Harrington",
	"Hartley", "Hastings", "Hawkins", "Hawthorne", "Hayward", "Henshaw",
	"Hewitt", "Hickman", "Hinton", "Holbrook", "Holden", "Hollis", "Holloway",
	"Holt", "Hopkins", "Houghton", "Howell", "Hutchins", "Ingram", "Irwin",
	"Jarvis", "Jennings", "Jensen", "Keating", "Kendrick", "Kennedy", "Kent",
	"Kerr", "Kimball", "Kincaid", "Kingsley", "Kirkland", "Knox", "Lambert",
	"Lancaster", "Landry", "Langford", "Larkin", "Latham", "Lawson", "Layton",
	"Ledger", "Lennox", "Lindsay", "Lockhart", "Lowell", "Lyman", "Mackey",
	"Maddox", "Mansfield", "Marlowe", "Marsh", "Mather", "Maxwell", "McAllister",
	"McBride", "McCallum", "McClain", "McCray", "McDowell", "McKenna",
	"Mercer", "Merritt", "Middleton", "Milburn", "Monroe", "Montgomery",
	"Moreland", "Morrow", "Mosley", "Nash", "Newell", "Nichols", "Norwood",
	"Oakes", "Ogden", "Osborne", "Paddington", "Palmer", "Parrish", "Paxton",
	"Pemberton", "Pennington", "Phelps", "Pickett", "Porter", "Prescott",
	"Preston", "Pruitt", "Quimby", "Radcliffe", "Ramsey", "Randall", "Redding",
	"Reeves", "Remington", "Rhodes", "Ridley", "Rockwell", "Rutherford",
	"Sanderson", "Sawyer", "Schaefer", "Sheffield", "Sheldon", "Sherwood",
	"Sinclair", "Slater", "Sloan", "Spalding", "Stanton", "Sterling",
	"Stratton", "Sutton", "Talbot", "Tanner", "Thatcher", "Thorne", "Thornton",
	"Tilden", "Townsend", "Tucker", "Underwood", "Vance", "Vaughn", "Wakefield",
	"Walton", "Warfield", "Weaver", "Webster", "Whitaker", "Whitfield",
	"Whitley", "Wilcox", "Wilder", "Windham", "Winslow", "Winters", "Wolcott",
	"Woodard", "Wyatt", "Yates",
}

// orgBaseWords builds synthetic organization names, one or two words plus
// a preserved suffix.
var orgBaseWords = []string{
	"Summit", "Pinnacle", "Horizon", "Beacon", "Cascade", "Meridian",
	"Keystone", "Northgate", "Silverline", "Bluepeak", "Ironwood", "Clearwater",
	"Brightstone", "Lakeshore", "Crestview", "Highland", "Redwood", "Sterling",
	"Granite", "Harbor", "Evergreen", "Falcon", "Compass", "Anchor",
	"Vanguard", "Pioneer", "Heritage", "Landmark", "Crossroads", "Gateway",
	"Stonebridge", "Fairview", "Westbrook",
}

// streetNames and streetSuffixes build synthetic street lines.
var streetNames = []string{
	"Maple", "Oak", "Cedar", "Elm", "Pine", "Birch", "Willow", "Chestnut",
	"Walnut", "Sycamore", "Juniper", "Magnolia", "Dogwood", "Hawthorn",
	"Laurel", "Aspen", "Alder", "Hickory", "Poplar", "Spruce", "Linden",
	"Mulberry", "Hazel", "Cypress", "Sequoia", "Redbud", "Cottonwood",
	"Buckeye", "Catalpa", "Locust", "Meadow", "Orchard", "Prairie", "Summit",
	"Valley", "Ridge", "Brook", "Spring", "Garden", "Harvest", "Sunset",
	"Sunrise", "Lakeview", "Hillcrest", "Fairmont", "Clearbrook", "Stonewall",
	"Riverbend", "Foxglove", "Primrose",
}

var streetSuffixes = []string{
	"St", "Ave", "Rd", "Blvd", "Ln", "Dr", "Ct", "Way", "Ter",
}

// cityNames is the draw pool for synthetic city/state lines.
var cityNames = []string{
	"Fairview", "Riverton", "Lakewood", "Greenville", "Bristol", "Clayton",
	"Dayton", "Franklin", "Georgetown", "Kingston", "Madison", "Milton",
	"Newport", "Oakland", "Salem", "Springfield", "Arlington", "Ashland",
	"Burlington", "Clinton",
}

// stateCodes covers the fifty US states.
var stateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

// einPrefixes are valid two-digit EIN campus prefixes.
var einPrefixes = []string{
	"10", "12", "20", "26", "27", "45", "46", "47", "81", "82", "83", "84",
	"85", "86", "87", "88", "92", "93", "99", "01", "02", "03", "04", "05",
	"06", "11", "13", "14", "15", "16", "21", "22", "23", "24", "25", "34",
	"35", "36", "37", "38", "39", "41", "42", "43", "44", "48", "50", "51",
	"52", "53", "54", "55", "56", "57", "58", "59", "60", "61", "62", "63",
	"64", "65", "66", "67", "68", "71", "72", "73", "74", "75", "76", "77",
	"80", "90", "91", "94", "95", "98",
}
